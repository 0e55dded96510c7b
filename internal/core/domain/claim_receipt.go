package domain

// ClaimReceipt correlates a finalized claim with the htlc it consumed. It is
// recorded by every locker-side party that witnesses the claim so that the
// revealed preimage can be retrieved later on the locker's side.
type ClaimReceipt struct {
	TxId      string
	RecordId  string
	Party     string
	Preimage  []byte
	CreatedAt int64
}

func (r ClaimReceipt) Key() string {
	return r.TxId + "/" + r.Party
}
