package ext

import "fmt"

// ParseExtendedMasterSecret validates the extended_master_secret
// extension (RFC 7627): its body must be empty.
func ParseExtendedMasterSecret(body []byte) error {
	if len(body) != 0 {
		return fmt.Errorf("ext: extended_master_secret: non-empty body")
	}
	return nil
}
