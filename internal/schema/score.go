package schema

// RescaleDomainScore maps a raw 0–25 domain score onto the 0–100 display
// scale. Pure; callers are responsible for the value existing at all.
func RescaleDomainScore(raw float64) float64 {
	return raw * 4
}
