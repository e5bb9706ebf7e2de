package model

// Base — военная база (справочник).
type Base struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Location string `json:"location,omitempty"`
}

// AssetType — тип имущества (справочник).
type AssetType struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}
