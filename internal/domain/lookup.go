package domain

import (
	"sort"
	"time"
)

// DomainInfo is the live snapshot returned by a lookup; nothing in it is persisted until a domain is saved.
type DomainInfo struct {
	DomainName       string            `json:"domain_name"`
	Registrar        *Registrar        `json:"registrar,omitempty"`
	ExpiryDate       *time.Time        `json:"expiry_date,omitempty"`
	RegistrationDate *time.Time        `json:"registration_date,omitempty"`
	UpdatedDate      *time.Time        `json:"updated_date,omitempty"`
	Statuses         []string          `json:"statuses"`
	Whois            *WhoisInfo        `json:"whois,omitempty"`
	IPAddresses      []IPAddress       `json:"ip_addresses"`
	DNSRecords       []DNSRecord       `json:"dns_records"`
	SSL              *SSLCertificate   `json:"ssl,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
	LookedUpAt       time.Time         `json:"looked_up_at"`
}

// Apply copies every field the lookup could resolve onto d; unresolved fields keep their stored value.
func (info DomainInfo) Apply(d *Domain) {
	if info.Registrar != nil && info.Registrar.Name != "" {
		d.Registrar = info.Registrar
	}
	if info.ExpiryDate != nil {
		d.ExpiryDate = info.ExpiryDate
	}
	if info.RegistrationDate != nil {
		d.RegistrationDate = info.RegistrationDate
	}
	if info.UpdatedDate != nil {
		d.UpdatedDate = info.UpdatedDate
	}
	if _, failed := info.Errors["whois"]; !failed {
		d.Statuses = info.Statuses
		if info.Whois != nil {
			d.Whois = info.Whois
		}
	}
	if _, failed := info.Errors["dns"]; !failed {
		if !info.dnsFailed("A") && !info.dnsFailed("AAAA") {
			d.IPAddresses = info.IPAddresses
		}
		d.DNSRecords = info.mergeRecords(d.DNSRecords)
	}
	if info.SSL != nil {
		d.SSL = info.SSL
	}
}

// DNSErrorKey is the Errors key of a single failed record type query, e.g. "dns:TXT".
func DNSErrorKey(recordType string) string {
	return "dns:" + recordType
}

func (info DomainInfo) dnsFailed(recordType string) bool {
	_, failed := info.Errors[DNSErrorKey(recordType)]
	return failed
}

// mergeRecords keeps the stored records of every type whose query failed and
// takes the looked-up records for the rest.
func (info DomainInfo) mergeRecords(stored []DNSRecord) []DNSRecord {
	records := make([]DNSRecord, 0, len(info.DNSRecords))
	for _, r := range stored {
		if info.dnsFailed(r.RecordType) {
			records = append(records, r)
		}
	}
	records = append(records, info.DNSRecords...)
	SortDNSRecords(records)
	return records
}

// SortDNSRecords orders records by type, then value.
func SortDNSRecords(records []DNSRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].RecordType != records[j].RecordType {
			return records[i].RecordType < records[j].RecordType
		}
		return records[i].RecordValue < records[j].RecordValue
	})
}
