package location

import (
	"regexp"
	"strings"
)

var pinCodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// States lists the states and union territories orders can ship to.
var States = []string{
	"Andaman and Nicobar Islands",
	"Andhra Pradesh",
	"Arunachal Pradesh",
	"Assam",
	"Bihar",
	"Chandigarh",
	"Chhattisgarh",
	"Dadra and Nagar Haveli and Daman and Diu",
	"Delhi",
	"Goa",
	"Gujarat",
	"Haryana",
	"Himachal Pradesh",
	"Jammu and Kashmir",
	"Jharkhand",
	"Karnataka",
	"Kerala",
	"Ladakh",
	"Lakshadweep",
	"Madhya Pradesh",
	"Maharashtra",
	"Manipur",
	"Meghalaya",
	"Mizoram",
	"Nagaland",
	"Odisha",
	"Puducherry",
	"Punjab",
	"Rajasthan",
	"Sikkim",
	"Tamil Nadu",
	"Telangana",
	"Tripura",
	"Uttar Pradesh",
	"Uttarakhand",
	"West Bengal",
}

// ValidPinCode checks the six digit postal index number format. The first digit is
// never zero.
func ValidPinCode(pinCode string) bool {
	return pinCodeRegex.MatchString(pinCode)
}

// IsState matches name against States ignoring case and surrounding spaces.
func IsState(name string) bool {
	name = strings.TrimSpace(name)
	for _, state := range States {
		if strings.EqualFold(state, name) {
			return true
		}
	}
	return false
}
