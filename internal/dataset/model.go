package dataset

import "time"

// Column names shared by the upstream producers. Matching is exact and case
// sensitive.
const (
	ColRecency         = "Recency"
	ColFrequency       = "Frequency"
	ColMonetary        = "Monetary"
	ColSegment         = "Segment"
	ColCluster         = "Cluster"
	ColPredictedCLV    = "predicted_clv"
	ColAmount          = "Amount"
	ColTransactionDate = "TransactionDate"
)

// customerIDColumns are tried in order; the id only labels rows and is not
// required.
var customerIDColumns = []string{"CustomerID", "customer_id", "Customer ID", "CustomerId"}

type CustomerMetrics struct {
	CustomerID string
	Recency    float64
	Frequency  float64
	Monetary   float64
}

type CustomerCLV struct {
	CustomerID   string
	PredictedCLV float64
}

type SegmentedCustomer struct {
	CustomerID string
	Recency    float64
	Frequency  float64
	Monetary   float64
	Segment    string
	Cluster    int
}

type Transaction struct {
	CustomerID string
	Amount     float64
	Date       time.Time
}

// CLVTable holds the RFM+CLV predictions. HasCLV is false when the upstream
// model produced no predicted_clv column.
type CLVTable struct {
	Rows   []CustomerCLV
	HasCLV bool
}

// SegmentTable holds segmented customers. HasCluster is false when no
// clustering was run upstream.
type SegmentTable struct {
	Rows       []SegmentedCustomer
	HasCluster bool
}

// Dataset is the immutable input snapshot consumed by every later stage.
type Dataset struct {
	Metrics      []CustomerMetrics
	CLV          CLVTable
	Segments     SegmentTable
	Transactions []Transaction
}
