package domain

// PricePriority expresses how much the user cares about price.
type PricePriority string

const (
	PriceLowest    PricePriority = "lowest"
	PriceBestValue PricePriority = "best_value"
	PricePremium   PricePriority = "premium"
)

// SellerTrust is the minimum seller reputation the user accepts.
type SellerTrust string

const (
	TrustAny      SellerTrust = "any"
	TrustHigh     SellerTrust = "high"
	TrustVerified SellerTrust = "verified"
)

// Condition is the acceptable item condition.
type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionRefurbished Condition = "refurbished"
	ConditionAny         Condition = "any"
)

// Budget bounds the acceptable price. Nil bounds are open.
type Budget struct {
	Min      *float64 `json:"min" jsonschema:"description=minimum price or null"`
	Max      *float64 `json:"max" jsonschema:"description=maximum price or null"`
	Currency string   `json:"currency" jsonschema:"description=ISO currency code"`
}

// Preferences steer ranking and recommendation.
type Preferences struct {
	PricePriority    PricePriority `json:"price_priority" jsonschema:"enum=lowest,enum=best_value,enum=premium"`
	DeliveryPriority bool          `json:"delivery_priority"`
	SellerTrust      SellerTrust   `json:"seller_trust" jsonschema:"enum=any,enum=high,enum=verified"`
	Condition        Condition     `json:"condition" jsonschema:"enum=new,enum=refurbished,enum=any"`
}

// StructuredRequest is the machine-readable form of a free-text shopping query.
// SearchQuery is never empty once the interpreter has produced the value.
type StructuredRequest struct {
	Product        string            `json:"product" jsonschema:"description=product name"`
	Brand          *string           `json:"brand" jsonschema:"description=brand name or null"`
	Model          *string           `json:"model" jsonschema:"description=model or variant or null"`
	Specifications map[string]string `json:"specifications" jsonschema:"description=storage/color/size/other specs"`
	Budget         Budget            `json:"budget"`
	Region         string            `json:"region" jsonschema:"description=country or region"`
	Preferences    Preferences       `json:"preferences"`
	SearchQuery    string            `json:"search_query" jsonschema:"-"`
}

// Defaults carries the process-wide fallback values used when a request omits them.
type Defaults struct {
	Region     string
	Currency   string
	MaxResults int
}

// Offer is one seller's listing normalized to a common schema.
type Offer struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	PriceString string   `json:"price_string"`
	Seller      string   `json:"seller"`
	URL         string   `json:"url"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Reviews     *int     `json:"reviews,omitempty"`
	Delivery    *string  `json:"delivery,omitempty"`
	Source      string   `json:"source"`
	InStock     bool     `json:"in_stock"`
}

// Status is the outcome of a recommendation.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusNoResults Status = "no_results"
	StatusError     Status = "error"
)

// Pick points at one of Recommendation.Products.
type Pick struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Recommendation is the explained result handed to presentation and chat.
type Recommendation struct {
	Status          Status   `json:"status"`
	Analysis        string   `json:"analysis"`
	Products        []Offer  `json:"products"`
	BestOverall     *Pick    `json:"best_overall,omitempty"`
	BestValue       *Pick    `json:"best_value,omitempty"`
	FastestDelivery *Pick    `json:"fastest_delivery,omitempty"`
	Considerations  []string `json:"considerations,omitempty"`
	Alternatives    string   `json:"alternatives,omitempty"`
}

// IndexedDocument is an offer as stored in the vector store.
type IndexedDocument struct {
	ID        string
	Text      string
	Embedding []float64
	Metadata  map[string]any
}

// SimilarOffer is one row of a similarity query.
type SimilarOffer struct {
	ID         string         `json:"id"`
	Document   string         `json:"document"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity_score"`
}

// RawListing is an unparsed record returned by an offer source.
type RawListing []byte
