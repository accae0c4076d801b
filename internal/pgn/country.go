package pgn

import (
	"fmt"
	"strings"
)

// CountryCode is a three letter country code as used in the Site tag
// ("New York, NY USA"). Besides nations it covers a few pseudo locations
// such as NET for internet games and SEA for games played at sea.
type CountryCode string

var countryNames = map[CountryCode]string{
	"AFG": "Afghanistan",
	"AIR": "Aboard Aircraft",
	"ALB": "Albania",
	"ALG": "Algeria",
	"AND": "Andorra",
	"ANG": "Angola",
	"ANT": "Antigua",
	"ARG": "Argentina",
	"ARM": "Armenia",
	"ATA": "Antarctica",
	"AUS": "Australia",
	"AZB": "Azerbaijan",
	"BAN": "Bangladesh",
	"BAR": "Bahrain",
	"BHM": "Bahamas",
	"BEL": "Belgium",
	"BER": "Bermuda",
	"BIH": "Bosnia Herzegovina",
	"BLA": "Belarus",
	"BLG": "Bulgaria",
	"BLZ": "Belize",
	"BOL": "Bolivia",
	"BRB": "Barbados",
	"BRS": "Brazil",
	"BRU": "Brunei",
	"BSW": "Botswana",
	"CAN": "Canada",
	"CHI": "Chile",
	"COL": "Columbia",
	"CRA": "Costa Rica",
	"CRO": "Croatia",
	"CSR": "Czechoslovakia",
	"CUB": "Cuba",
	"CYP": "Cyprus",
	"DEN": "Denmark",
	"DOM": "Dominican Republic",
	"ECU": "Ecuador",
	"EGY": "Egypt",
	"ENG": "England",
	"ESP": "Spain",
	"EST": "Estonia",
	"FAI": "Faroe Islands",
	"FIJ": "Fiji",
	"FIN": "Finland",
	"FRA": "France",
	"GAM": "Gambia",
	"GCI": "Guernsey Jersey",
	"GEO": "Georgia",
	"GER": "Germany",
	"GHA": "Ghana",
	"GRC": "Greece",
	"GUA": "Guatemala",
	"GUY": "Guyana",
	"HAI": "Haiti",
	"HKG": "Hong Kong",
	"HON": "Honduras",
	"HUN": "Hungary",
	"IND": "India",
	"IRL": "Ireland",
	"IRN": "Iran",
	"IRQ": "Iraq",
	"ISD": "Iceland",
	"ISR": "Israel",
	"ITA": "Italy",
	"IVO": "Ivory Coast",
	"JAM": "Jamaica",
	"JAP": "Japan",
	"JRD": "Jordan",
	"JUG": "Yugoslavia",
	"KAZ": "Kazakhstan",
	"KEN": "Kenya",
	"KIR": "Kyrgyzstan",
	"KUW": "Kuwait",
	"LAT": "Latvia",
	"LEB": "Lebanon",
	"LIB": "Libya",
	"LIC": "Liechtenstein",
	"LTU": "Lithuania",
	"LUX": "Luxembourg",
	"MAL": "Malaysia",
	"MAU": "Mauritania",
	"MEX": "Mexico",
	"MLI": "Mali",
	"MLT": "Malta",
	"MNC": "Monaco",
	"MOL": "Moldova",
	"MON": "Mongolia",
	"MOZ": "Mozambique",
	"MRC": "Morocco",
	"MRT": "Mauritius",
	"MYN": "Myanmar",
	"NCG": "Nicaragua",
	"NET": "The Internet",
	"NIG": "Nigeria",
	"NLA": "Netherlands Antilles",
	"NLD": "Netherlands",
	"NOR": "Norway",
	"NZD": "New Zealand",
	"OST": "Austria",
	"PAK": "Pakistan",
	"PAL": "Palestine",
	"PAN": "Panama",
	"PAR": "Paraguay",
	"PER": "Peru",
	"PHI": "Philippines",
	"PNG": "Papua New Guinea",
	"POL": "Poland",
	"POR": "Portugal",
	"PRC": "Peoples Republic Of China",
	"PRO": "Puerto Rico",
	"QTR": "Qatar",
	"RIN": "Indonesia",
	"ROM": "Romania",
	"RUS": "Russia",
	"SAF": "South Africa",
	"SAL": "El Salvador",
	"SCO": "Scotland",
	"SEA": "At Sea",
	"SEN": "Senegal",
	"SEY": "Seychelles",
	"SIP": "Singapore",
	"SLV": "Slovenia",
	"SMA": "San Marino",
	"SPC": "Aboard Spacecraft",
	"SRI": "Sri Lanka",
	"SUD": "Sudan",
	"SUR": "Surinam",
	"SVE": "Sweden",
	"SWZ": "Switzerland",
	"SYR": "Syria",
	"TAI": "Thailand",
	"TMT": "Turkmenistan",
	"TRK": "Turkey",
	"TTO": "Trinidad And Tobago",
	"TUN": "Tunisia",
	"UAE": "United Arab Emirates",
	"UGA": "Uganda",
	"UKR": "Ukraine",
	"UNK": "Unknown",
	"URU": "Uruguay",
	"USA": "United States Of America",
	"UZB": "Uzbekistan",
	"VEN": "Venezuela",
	"VGB": "British Virgin Islands",
	"VIE": "Vietnam",
	"VUS": "US Virgin Islands",
	"WLS": "Wales",
	"YEM": "Yemen",
	"ZAM": "Zambia",
	"ZIM": "Zimbabwe",
	"ZRE": "Zaire",
}

func ParseCountryCode(s string) (CountryCode, error) {
	c := CountryCode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := countryNames[c]; !ok {
		return "", &InvalidPgnError{Err: fmt.Errorf("unknown country code %q", s)}
	}
	return c, nil
}

func (c CountryCode) String() string { return string(c) }

// Name is the English country name, empty for unknown codes.
func (c CountryCode) Name() string { return countryNames[c] }
