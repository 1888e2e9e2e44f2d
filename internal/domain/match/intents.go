package match

import "github.com/negade/gebeya/internal/domain/model"

// matchActionURL is the deep-link target for both parties.
func matchActionURL(matchID string) string {
	return "/dashboard/matches/" + matchID
}

// buyerIntent tells the buyer a match was found for their request.
func buyerIntent(req model.BuyRequest, m model.Match) model.NotificationIntent {
	return model.NotificationIntent{
		RecipientID: m.BuyerID,
		Type:        model.IntentTypeNewMatch,
		Title:       "New Match Found!",
		TitleAm:     "አዲስ ተዛማጅ ተገኝቷል!",
		Message:     "We found a match for your request: " + req.Title,
		MessageAm:   "ለጥያቄዎ ተዛማጅ አግኝተናል: " + req.Title,
		ActionURL:   matchActionURL(m.ID),
		Metadata:    model.IntentMetadata{MatchID: m.ID, Score: m.Score},
	}
}

// AcceptanceIntent tells the counterparty that actorID accepted the
// match, inviting them to start negotiating.
func AcceptanceIntent(m model.Match, actorID string) model.NotificationIntent {
	recipient := m.BuyerID
	title, titleAm := "Seller Accepted Match!", "ሻጭ ተስማምቷል!"
	message := "The seller has accepted your match. You can now start negotiating!"
	messageAm := "ሻጭ ተስማምተዋል። አሁን መደራደር ይችላሉ!"
	if actorID == m.BuyerID {
		recipient = m.SellerID
		title, titleAm = "Buyer Accepted Match!", "ገዢው ተስማምቷል!"
		message = "The buyer has accepted your match. You can now start negotiating!"
		messageAm = "ገዢው ተስማምተዋል። አሁን መደራደር ይችላሉ!"
	}
	return model.NotificationIntent{
		RecipientID: recipient,
		Type:        model.IntentTypeMatchAccepted,
		Title:       title,
		TitleAm:     titleAm,
		Message:     message,
		MessageAm:   messageAm,
		ActionURL:   matchActionURL(m.ID),
		Metadata:    model.IntentMetadata{MatchID: m.ID, Score: m.Score},
	}
}

// sellerIntent tells the seller a buyer is interested in their listing.
func sellerIntent(listing model.Listing, m model.Match) model.NotificationIntent {
	return model.NotificationIntent{
		RecipientID: m.SellerID,
		Type:        model.IntentTypeNewMatch,
		Title:       "New Buyer Match!",
		TitleAm:     "አዲስ ገዢ ተገኝቷል!",
		Message:     "A buyer is interested in: " + listing.Title,
		MessageAm:   "ገዢ ፍላጎት አለው: " + listing.Title,
		ActionURL:   matchActionURL(m.ID),
		Metadata:    model.IntentMetadata{MatchID: m.ID, Score: m.Score},
	}
}
