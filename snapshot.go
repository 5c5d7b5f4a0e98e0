package match

// BookSnapshot contains the resting orders of both ledgers.
type BookSnapshot struct {
	TradeID uint64  `json:"trade_id"` // Last trade ID issued
	Bids    []Order `json:"bids"`     // Ordered list of bids (best price first)
	Asks    []Order `json:"asks"`     // Ordered list of asks (best price first)
}

// Snapshot copies both books. Like Stats it must not race with Submit.
func (e *MatchingEngine) Snapshot() *BookSnapshot {
	return &BookSnapshot{
		TradeID: e.tradeID,
		Bids:    e.buy.Orders(),
		Asks:    e.sell.Orders(),
	}
}

// Resting returns the total number of resting orders in the snapshot.
func (s *BookSnapshot) Resting() int {
	return len(s.Bids) + len(s.Asks)
}
