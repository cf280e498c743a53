// Package catalog holds the static reference data the review form is built
// from: installer names, per-component brand lists, and the fixed option
// buckets. The data is injectable so tests and deployments can substitute
// their own lists; Default returns the shipped set.
package catalog

// ComponentType identifies one of the five fixed equipment categories a
// review can cover.
type ComponentType string

const (
	Inverter  ComponentType = "inverter"
	Panel     ComponentType = "panel"
	Battery   ComponentType = "battery"
	EVCharger ComponentType = "evCharger"
	HeatPump  ComponentType = "heatPump"
)

// ComponentTypes lists the categories in presentation order.
var ComponentTypes = []ComponentType{Inverter, Panel, Battery, EVCharger, HeatPump}

// ResponseTime is one bucket of the installer-response-time question.
type ResponseTime struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog is the full option set for one deployment.
type Catalog struct {
	Installers      []string                   `json:"installers"`
	Brands          map[ComponentType][]string `json:"brands"`
	SystemSizes     []string                   `json:"systemSizes"`
	ResponseTimes   []ResponseTime             `json:"responseTimes"`
	RatingLabels    map[int]string             `json:"ratingLabels"`
	ComponentLabels map[ComponentType]string   `json:"componentLabels"`
}

// BrandsFor returns the brand list for a component type, nil when the type is
// unknown. The lists always end with "Other"; selecting it unlocks free-text
// brand entry.
func (c *Catalog) BrandsFor(t ComponentType) []string {
	return c.Brands[t]
}

// HasResponseTime reports whether v is one of the configured bucket values.
func (c *Catalog) HasResponseTime(v string) bool {
	for _, rt := range c.ResponseTimes {
		if rt.Value == v {
			return true
		}
	}
	return false
}

// HasSystemSize reports whether v is one of the configured size buckets.
func (c *Catalog) HasSystemSize(v string) bool {
	for _, s := range c.SystemSizes {
		if s == v {
			return true
		}
	}
	return false
}

// Default returns the shipped catalog.
func Default() *Catalog {
	return &Catalog{
		Installers: []string{
			"Origin Energy",
			"AGL Solar",
			"SolarHub",
			"EnergyAustralia",
			"Solargain",
			"Infinite Energy",
			"SunBoost",
			"Smart Energy",
			"Solar Hart",
			"Natural Solar",
			"Empower Solar",
			"Arise Solar",
		},
		Brands: map[ComponentType][]string{
			Inverter:  {"Fronius", "SMA", "Sungrow", "GoodWe", "Enphase", "SolarEdge", "Huawei", "Growatt", "Other"},
			Panel:     {"Jinko", "Longi", "Trina", "SunPower", "REC", "Canadian Solar", "Qcells", "Risen", "Other"},
			Battery:   {"Tesla Powerwall", "BYD", "Sungrow", "AlphaESS", "LG Chem", "Sonnen", "GoodWe", "Other"},
			EVCharger: {"Tesla", "Zappi", "Wallbox", "Fronius Wattpilot", "SMA EV Charger", "Other"},
			HeatPump:  {"Reclaim", "Sanden", "iStore", "Quantum", "Rheem", "Other"},
		},
		SystemSizes: []string{
			"Under 3kW",
			"3kW - 5kW",
			"5kW - 6.6kW",
			"6.6kW - 8kW",
			"8kW - 10kW",
			"10kW - 15kW",
			"15kW - 30kW",
			"Over 30kW",
		},
		ResponseTimes: []ResponseTime{
			{Value: "24h", Label: "Within 24 hours"},
			{Value: "72h", Label: "Within 72 hours"},
			{Value: "1week", Label: "Within 1 week"},
			{Value: "slow", Label: "More than 1 week"},
		},
		RatingLabels: map[int]string{
			1: "Very Dissatisfied",
			2: "Dissatisfied",
			3: "Neutral",
			4: "Satisfied",
			5: "Very Satisfied",
		},
		ComponentLabels: map[ComponentType]string{
			Inverter:  "Inverter",
			Panel:     "Solar Panels",
			Battery:   "Battery Storage",
			EVCharger: "EV Charger",
			HeatPump:  "Hot Water Heat Pump",
		},
	}
}
