package request

type FindCatalog struct {
	PrintType string `validate:"omitempty,max=50" json:"printType"`
	Variant   string `validate:"omitempty,max=50" json:"variant"`
	Size      string `validate:"omitempty,max=50" json:"size"`
}

type QuotePrice struct {
	PrintType string `validate:"required,max=50" json:"printType"`
	Variant   string `validate:"required,max=50" json:"variant"`
	Size      string `validate:"required,max=50" json:"size"`
}
