package loopia

import (
	"fmt"

	"gitlab.bluewillows.net/root/subreg/pkg/xmlrpc"
)

// Default zone record parameters, matching what the registration workflow
// has always sent.
const (
	DefaultTTL      = 3600
	DefaultPriority = 1
)

// ZoneRecord is a DNS resource record as the provider API represents it.
type ZoneRecord struct {
	Type     string
	TTL      int
	Priority int
	Rdata    string
	RecordID int
}

// NewARecord builds an A record pointing at the given address, with the
// default TTL and priority. RecordID is left zero so the server assigns one.
func NewARecord(ip string) ZoneRecord {
	return ZoneRecord{
		Type:     "A",
		TTL:      DefaultTTL,
		Priority: DefaultPriority,
		Rdata:    ip,
	}
}

// toStruct converts the record to its wire form.
func (r ZoneRecord) toStruct() xmlrpc.Struct {
	return xmlrpc.Struct{
		"type":      r.Type,
		"ttl":       r.TTL,
		"priority":  r.Priority,
		"rdata":     r.Rdata,
		"record_id": r.RecordID,
	}
}

// recordFromValue decodes a record from a response struct value.
func recordFromValue(v xmlrpc.Value) (ZoneRecord, error) {
	if v.Kind != xmlrpc.KindStruct {
		return ZoneRecord{}, fmt.Errorf("expected struct value, got %s", v.Kind)
	}
	return ZoneRecord{
		Type:     v.StringMember("type"),
		TTL:      int(v.IntMember("ttl")),
		Priority: int(v.IntMember("priority")),
		Rdata:    v.StringMember("rdata"),
		RecordID: int(v.IntMember("record_id")),
	}, nil
}
