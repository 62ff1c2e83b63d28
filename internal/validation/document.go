package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// documentValidator checks one national identity document format.
// A nil return means the document is valid; otherwise the error carries the
// user-facing reason.
type documentValidator func(document string) error

// dniLetters is the Spanish DNI check-letter table, indexed by digits mod 23.
const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

var (
	dniPattern    = regexp.MustCompile(`^[0-9]{8}[A-Z]$`)
	nifPattern    = regexp.MustCompile(`^[0-9]{9}$`)
	cpfPattern    = regexp.MustCompile(`^[0-9]{11}$`)
	curpPattern   = regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM][A-Z]{5}[0-9A-Z][0-9]$`)
	cfPattern     = regexp.MustCompile(`^[A-Z0-9]{16}$`)
	cedulaPattern = regexp.MustCompile(`^[0-9]{8,10}$`)
)

// normalizeDocument strips spaces, dashes and dots and uppercases the document.
func normalizeDocument(document string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "")
	return strings.ToUpper(replacer.Replace(document))
}

// validateSpainDNI checks the Spanish DNI: 8 digits plus a mod-23 check letter.
func validateSpainDNI(document string) error {
	normalized := normalizeDocument(document)
	if !dniPattern.MatchString(normalized) {
		return fmt.Errorf("DNI must be 8 digits followed by a letter (e.g. 12345678Z)")
	}
	digits, errParse := strconv.Atoi(normalized[:8])
	if errParse != nil {
		return fmt.Errorf("DNI must start with 8 digits")
	}
	expected := dniLetters[digits%23]
	if normalized[8] != expected {
		return fmt.Errorf("DNI check letter is invalid, expected %c", expected)
	}
	return nil
}

// validatePortugalNIF checks the Portuguese NIF: 9 digits, the last one a
// mod-11 check digit over the first 8 with weights 9..2.
func validatePortugalNIF(document string) error {
	normalized := normalizeDocument(document)
	if !nifPattern.MatchString(normalized) {
		return fmt.Errorf("NIF must be 9 digits")
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(normalized[i]-'0') * (9 - i)
	}
	remainder := sum % 11
	expected := 0
	if remainder >= 2 {
		expected = 11 - remainder
	}
	if int(normalized[8]-'0') != expected {
		return fmt.Errorf("NIF check digit is invalid")
	}
	return nil
}

// validateBrazilCPF checks the Brazilian CPF: 11 digits with two sequential
// mod-11 check digits. CPFs made of a single repeated digit are rejected.
func validateBrazilCPF(document string) error {
	normalized := normalizeDocument(document)
	if !cpfPattern.MatchString(normalized) {
		return fmt.Errorf("CPF must be 11 digits")
	}
	if strings.Count(normalized, normalized[:1]) == len(normalized) {
		return fmt.Errorf("CPF cannot have all identical digits")
	}
	if cpfCheckDigit(normalized, 9, 10) != int(normalized[9]-'0') {
		return fmt.Errorf("CPF first check digit is invalid")
	}
	if cpfCheckDigit(normalized, 10, 11) != int(normalized[10]-'0') {
		return fmt.Errorf("CPF second check digit is invalid")
	}
	return nil
}

// cpfCheckDigit computes a CPF check digit over the first n digits with
// descending weights starting at startWeight.
func cpfCheckDigit(digits string, n, startWeight int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// validateMexicoCURP checks the Mexican CURP structure. Format-only: the
// check digit algorithm is not verified.
func validateMexicoCURP(document string) error {
	normalized := normalizeDocument(document)
	if !curpPattern.MatchString(normalized) {
		return fmt.Errorf("CURP must be 18 alphanumeric characters in the correct format")
	}
	return nil
}

// validateItalyCodiceFiscale checks the Italian Codice Fiscale length and
// character set. Format-only: the structural checksum is not verified.
func validateItalyCodiceFiscale(document string) error {
	normalized := normalizeDocument(document)
	if !cfPattern.MatchString(normalized) {
		return fmt.Errorf("Codice Fiscale must be 16 alphanumeric characters")
	}
	return nil
}

// validateColombiaCedula checks the Colombian Cédula de Ciudadanía: 8 to 10 digits.
func validateColombiaCedula(document string) error {
	normalized := normalizeDocument(document)
	if !cedulaPattern.MatchString(normalized) {
		return fmt.Errorf("Cédula de Ciudadanía must be between 8 and 10 digits")
	}
	return nil
}

// dispatchKey pairs a country with an uppercased document type label.
type dispatchKey struct {
	country      models.Country
	documentType string
}

// documentValidators maps (country, document type) to the matching validator.
var documentValidators = map[dispatchKey]documentValidator{
	{models.CountrySpain, "DNI"}:                     validateSpainDNI,
	{models.CountryPortugal, "NIF"}:                  validatePortugalNIF,
	{models.CountryBrazil, "CPF"}:                    validateBrazilCPF,
	{models.CountryMexico, "CURP"}:                   validateMexicoCURP,
	{models.CountryItaly, "CODICE FISCALE"}:          validateItalyCodiceFiscale,
	{models.CountryColombia, "CÉDULA DE CIUDADANÍA"}: validateColombiaCedula,
	{models.CountryColombia, "CEDULA DE CIUDADANIA"}: validateColombiaCedula,
	{models.CountryColombia, "CC"}:                   validateColombiaCedula,
}

// Generic fallback bounds for document types without a dedicated validator.
const (
	genericMinDocumentLen = 3
	genericMaxDocumentLen = 50
)

// CheckDocument validates a document against the country-specific format for
// the declared document type. Unknown (country, type) combinations fall back
// to generic length checks so that newly configured countries are accepted
// until a dedicated validator exists.
func CheckDocument(country models.Country, documentType, document string) error {
	trimmed := strings.TrimSpace(document)
	if trimmed == "" {
		return fmt.Errorf("identity document is required")
	}

	typeUpper := strings.ToUpper(strings.TrimSpace(documentType))

	if validator, ok := documentValidators[dispatchKey{country, typeUpper}]; ok {
		return validator(trimmed)
	}

	// Tolerate labeling variance such as "CÉDULA DE CIUDADANÍA" vs "CC".
	for key, validator := range documentValidators {
		if key.country != country || typeUpper == "" {
			continue
		}
		if strings.Contains(typeUpper, key.documentType) || strings.Contains(key.documentType, typeUpper) {
			return validator(trimmed)
		}
	}

	if len(trimmed) < genericMinDocumentLen {
		return fmt.Errorf("document %s must have at least %d characters", documentType, genericMinDocumentLen)
	}
	if len(trimmed) > genericMaxDocumentLen {
		return fmt.Errorf("document %s cannot have more than %d characters", documentType, genericMaxDocumentLen)
	}
	return nil
}
