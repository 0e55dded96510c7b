package domain

import "time"

const HTLCTopic = "htlc"

type HTLCEvent struct {
	Id   string
	Type EventType
}

func (e HTLCEvent) GetTopic() string   { return HTLCTopic }
func (e HTLCEvent) GetType() EventType { return e.Type }

type HTLCLocked struct {
	HTLCEvent
	Hash       []byte
	Expiry     int64
	Lockers    []string
	Recipients []string
	Issuer     string
	Observers  []string
	Asset      AssetRef
	TxRef      string
	Timestamp  int64
}

func (e HTLCLocked) ExpiryTime() time.Time {
	return time.Unix(0, e.Expiry).UTC()
}

type HTLCClaimed struct {
	HTLCEvent
	Claimant  string
	Preimage  []byte
	TxRef     string
	Timestamp int64
}

type HTLCReclaimed struct {
	HTLCEvent
	Reclaimant string
	TxRef      string
	Timestamp  int64
}
