// Package recommendation holds the result returned for a preference.
package recommendation

// Status of a recommendation.
type Status string

// Result statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// EmptyMessage is returned when no item survives filtering and relaxation.
const EmptyMessage = "No laptops found matching your requirements. Try widening your budget or relaxing some specifications."

// Laptop is the display form of a catalog item.
type Laptop struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        string  `json:"price"`
	PriceValue   float64 `json:"price_value"`
	RAM          string  `json:"ram"`
	Storage      string  `json:"storage"`
	ScreenSize   string  `json:"screen_size"`
	Weight       string  `json:"weight"`
	Processor    string  `json:"processor"`
	GPU          string  `json:"gpu"`
	DedicatedGPU bool    `json:"dedicated_gpu"`
	Battery      string  `json:"battery"`
	Performance  float64 `json:"performance_score"`
	Portability  float64 `json:"portability"`
	Value        float64 `json:"value_score"`
	Rating       float64 `json:"rating"`
}

// Entry is a recommended laptop with its similarity to the best match.
type Entry struct {
	Laptop
	SimilarityScore float64 `json:"similarity_score"`
	ClusterID       int     `json:"cluster_id"`
}

// Result is the outcome of a recommendation query.
type Result struct {
	Status                 Status  `json:"status"`
	Message                string  `json:"message,omitempty"`
	BestMatch              *Entry  `json:"best_match"`
	SimilarRecommendations []Entry `json:"similar_recommendations"`
	TotalMatches           int     `json:"total_matches"`
	Relaxed                bool    `json:"relaxed"`
}

// Empty returns the terminal no-match result.
func Empty(relaxed bool) Result {
	return Result{
		Status:                 StatusError,
		Message:                EmptyMessage,
		SimilarRecommendations: []Entry{},
		Relaxed:                relaxed,
	}
}

// Invalid returns the result body for a rejected preference.
func Invalid(message string) Result {
	return Result{
		Status:                 StatusError,
		Message:                message,
		SimilarRecommendations: []Entry{},
	}
}
