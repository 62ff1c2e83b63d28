package models

import "strings"

// Country identifies a supported jurisdiction.
type Country string

// Supported countries.
const (
	// CountryBrazil is Brazil.
	CountryBrazil Country = "Brazil"
	// CountryMexico is Mexico.
	CountryMexico Country = "Mexico"
	// CountryPortugal is Portugal.
	CountryPortugal Country = "Portugal"
	// CountrySpain is Spain.
	CountrySpain Country = "Spain"
	// CountryItaly is Italy.
	CountryItaly Country = "Italy"
	// CountryColombia is Colombia.
	CountryColombia Country = "Colombia"
)

// Canonical identity document type labels per country.
const (
	// DocumentTypeCPF is the Brazilian CPF.
	DocumentTypeCPF = "CPF"
	// DocumentTypeCURP is the Mexican CURP.
	DocumentTypeCURP = "CURP"
	// DocumentTypeNIF is the Portuguese NIF.
	DocumentTypeNIF = "NIF"
	// DocumentTypeDNI is the Spanish DNI.
	DocumentTypeDNI = "DNI"
	// DocumentTypeCodiceFiscale is the Italian Codice Fiscale.
	DocumentTypeCodiceFiscale = "Codice Fiscale"
	// DocumentTypeCedula is the Colombian Cédula de Ciudadanía.
	DocumentTypeCedula = "Cédula de Ciudadanía"
)

// AllCountries lists every supported country in seed order.
var AllCountries = []Country{
	CountrySpain,
	CountryPortugal,
	CountryItaly,
	CountryMexico,
	CountryColombia,
	CountryBrazil,
}

// currencyByCountry maps each country to its ISO 4217 currency code.
var currencyByCountry = map[Country]string{
	CountryBrazil:   "BRL",
	CountryMexico:   "MXN",
	CountryPortugal: "EUR",
	CountrySpain:    "EUR",
	CountryItaly:    "EUR",
	CountryColombia: "COP",
}

// documentTypeByCountry maps each country to its canonical document type label.
var documentTypeByCountry = map[Country]string{
	CountryBrazil:   DocumentTypeCPF,
	CountryMexico:   DocumentTypeCURP,
	CountryPortugal: DocumentTypeNIF,
	CountrySpain:    DocumentTypeDNI,
	CountryItaly:    DocumentTypeCodiceFiscale,
	CountryColombia: DocumentTypeCedula,
}

// ParseCountry resolves a country name case-insensitively.
func ParseCountry(raw string) (Country, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, country := range AllCountries {
		if strings.EqualFold(string(country), trimmed) {
			return country, true
		}
	}
	return "", false
}

// IsValid reports whether the country is one of the supported jurisdictions.
func (c Country) IsValid() bool {
	_, ok := currencyByCountry[c]
	return ok
}

// CurrencyCode returns the ISO 4217 currency code for the country.
func (c Country) CurrencyCode() string {
	return currencyByCountry[c]
}

// DocumentType returns the canonical identity document type label for the country.
func (c Country) DocumentType() string {
	return documentTypeByCountry[c]
}
