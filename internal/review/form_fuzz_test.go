package review

import "testing"

// FuzzWithSystemCost checks the numeric-string grammar: an update is either
// stored exactly as given (when it is digits with at most one decimal point)
// or dropped with the prior value retained. No input may ever corrupt the
// stored cost.
func FuzzWithSystemCost(f *testing.F) {
	f.Add("")
	f.Add("12500")
	f.Add("12500.50")
	f.Add(".")
	f.Add("1.2.3")
	f.Add("12,000")
	f.Add("-5")
	f.Add("１２３")

	f.Fuzz(func(t *testing.T, input string) {
		const prior = "4200"
		form := NewForm().WithSystemCost(prior).WithSystemCost(input)

		valid := true
		dots := 0
		for _, r := range input {
			switch {
			case r >= '0' && r <= '9':
			case r == '.':
				dots++
				if dots > 1 {
					valid = false
				}
			default:
				valid = false
			}
		}

		if valid && form.SystemCost != input {
			t.Fatalf("valid cost %q not stored (got %q)", input, form.SystemCost)
		}
		if !valid && form.SystemCost != prior {
			t.Fatalf("invalid cost %q replaced prior value (got %q)", input, form.SystemCost)
		}
	})
}
