package domain

import "time"

// SSLCertificate is the leaf certificate served on port 443.
type SSLCertificate struct {
	Issuer             string    `db:"issuer" json:"issuer"`
	IssuerCountry      string    `db:"issuer_country" json:"issuer_country"`
	Subject            string    `db:"subject" json:"subject"`
	ValidFrom          time.Time `db:"valid_from" json:"valid_from"`
	ValidTo            time.Time `db:"valid_to" json:"valid_to"`
	Fingerprint        string    `db:"fingerprint" json:"fingerprint"`
	KeySize            int       `db:"key_size" json:"key_size"`
	SignatureAlgorithm string    `db:"signature_algorithm" json:"signature_algorithm"`
}

func (c *SSLCertificate) DaysRemaining(now time.Time) int {
	return DaysBetween(now, c.ValidTo)
}
