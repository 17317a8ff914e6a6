// Package geocoder turns addresses and zipcodes into coordinates using the
// MapQuest geocoding API. Calls go through a circuit breaker so that a
// failing provider is skipped quickly instead of slowing every write.
package geocoder
