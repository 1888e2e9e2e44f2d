// Package model contains domain entities passed between layers.
package model

import "time"

// Category enumerates the trade categories shared by buy requests and
// listings. Matching never crosses category boundaries.
type Category string

const (
	CategoryAgriculturalProducts  Category = "AGRICULTURAL_PRODUCTS"
	CategoryLivestock             Category = "LIVESTOCK"
	CategoryMachineryEquipment    Category = "MACHINERY_EQUIPMENT"
	CategoryConstructionMaterials Category = "CONSTRUCTION_MATERIALS"
	CategoryTextilesClothing      Category = "TEXTILES_CLOTHING"
	CategoryFoodBeverages         Category = "FOOD_BEVERAGES"
	CategoryTechnologyElectronics Category = "TECHNOLOGY_ELECTRONICS"
	CategoryAutomotive            Category = "AUTOMOTIVE"
	CategoryRealEstate            Category = "REAL_ESTATE"
	CategoryServices              Category = "SERVICES"
	CategoryOther                 Category = "OTHER"
)

// Categories lists every valid category value.
func Categories() []Category {
	return []Category{
		CategoryAgriculturalProducts,
		CategoryLivestock,
		CategoryMachineryEquipment,
		CategoryConstructionMaterials,
		CategoryTextilesClothing,
		CategoryFoodBeverages,
		CategoryTechnologyElectronics,
		CategoryAutomotive,
		CategoryRealEstate,
		CategoryServices,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Urgency is an ordered urgency level: LOW < NORMAL < HIGH < URGENT.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// Rank returns the position of u in the urgency ordering, with unknown
// values ranked below LOW.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyNormal:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyUrgent:
		return 4
	default:
		return 0
	}
}

// Lifecycle statuses.
const (
	StatusActive = "ACTIVE"
	StatusClosed = "CLOSED"
)

// MatchStatus is the lifecycle of a match: PENDING until a party accepts
// or rejects; ACCEPTED and REJECTED are terminal.
type MatchStatus string

const (
	MatchPending  MatchStatus = "PENDING"
	MatchAccepted MatchStatus = "ACCEPTED"
	MatchRejected MatchStatus = "REJECTED"
)

// BuyRequest is a buyer-authored statement of demand. Read-only input to
// the matching engine.
//
// MaxBudget == 0 means no budget declared; Quantity == 0 means no quantity
// requirement.
type BuyRequest struct {
	ID          string   `json:"id"`
	BuyerID     string   `json:"buyer_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	MinBudget   float64  `json:"min_budget,omitempty"`
	MaxBudget   float64  `json:"max_budget,omitempty"`
	Quantity    int      `json:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Location    string   `json:"location"`
	Urgency     Urgency  `json:"urgency"`
	Status      string   `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Listing is a seller-authored product offer. Read-only input to the
// matching engine. Quantity == 0 means quantity is not tracked.
type Listing struct {
	ID             string   `json:"id"`
	SellerID       string   `json:"seller_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       Category `json:"category"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	Quantity       int      `json:"quantity"`
	Unit           string   `json:"unit"`
	SellerVerified bool     `json:"seller_verified"`
	Status         string   `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Match is a scored pairing between one buy request and one listing.
// At most one Match exists per (BuyRequestID, ListingID) pair.
type Match struct {
	ID           string      `json:"id"`
	BuyRequestID string      `json:"buy_request_id"`
	ListingID    string      `json:"listing_id"`
	BuyerID      string      `json:"buyer_id"`
	SellerID     string      `json:"seller_id"`
	Score        int         `json:"score"`
	Reason       string      `json:"reason"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IntentMetadata is the structured payload attached to a notification
// intent.
type IntentMetadata struct {
	MatchID string `json:"match_id"`
	Score   int    `json:"score"`
}

// NotificationIntent asks the external delivery collaborator to inform an
// actor about an event. Produced by the engine, never persisted here.
// Titles and messages are bilingual (English and Amharic).
type NotificationIntent struct {
	RecipientID string         `json:"recipient_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	TitleAm     string         `json:"title_am"`
	Message     string         `json:"message"`
	MessageAm   string         `json:"message_am"`
	ActionURL   string         `json:"action_url"`
	Metadata    IntentMetadata `json:"metadata"`
}

// Intent types.
const (
	// IntentTypeNewMatch tags intents produced when a match is created.
	IntentTypeNewMatch = "NEW_MATCH"

	// IntentTypeMatchAccepted tags intents produced when a party accepts
	// a match.
	IntentTypeMatchAccepted = "MATCH_ACCEPTED"
)
