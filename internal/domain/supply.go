package domain

// SupplyRecord is one weekly delivery report from the health service,
// keyed by date. Counts are cumulative doses delivered, not administered.
type SupplyRecord struct {
	Date        string `json:"date" dynamodbav:"date"`
	Total       int64  `json:"total" dynamodbav:"total"`
	Pfizer      int64  `json:"pfizer" dynamodbav:"pfizer"`
	Moderna     int64  `json:"moderna" dynamodbav:"moderna"`
	AstraZeneca int64  `json:"astra_zeneca" dynamodbav:"astra_zeneca"`
	Janssen     int64  `json:"janssen" dynamodbav:"janssen"`
}

type SupplyInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Total       int64  `json:"total" validate:"gte=0"`
	Pfizer      int64  `json:"pfizer" validate:"gte=0"`
	Moderna     int64  `json:"moderna" validate:"gte=0"`
	AstraZeneca int64  `json:"astra_zeneca" validate:"gte=0"`
	Janssen     int64  `json:"janssen" validate:"gte=0"`
}
