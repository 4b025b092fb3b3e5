package util

import (
	"github.com/nyaruka/phonenumbers"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
)

// RegionOf returns the ISO region code for an international number, or ""
// when the calling code is unknown. Numbers are tried with a '+' prefix since
// the checker service expects international format.
func RegionOf(n model.PhoneNumber) string {
	digits := n.Digits()
	if digits == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse("+"+digits, "")
	if err != nil {
		return ""
	}
	region := phonenumbers.GetRegionCodeForNumber(parsed)
	if region == "ZZ" {
		return ""
	}
	return region
}
