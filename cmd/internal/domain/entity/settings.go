package entity

type AccessibilitySettings struct {
	FontSize       int     `json:"fontSize"`   // percent: 80, 100, 120, 140
	LineHeight     float64 `json:"lineHeight"` // 1.2, 1.5, 1.8
	HighContrast   bool    `json:"highContrast"`
	SimplifiedMode bool    `json:"simplifiedMode"` // no animations
}

func DefaultAccessibilitySettings() AccessibilitySettings {
	return AccessibilitySettings{
		FontSize:       100,
		LineHeight:     1.5,
		HighContrast:   false,
		SimplifiedMode: false,
	}
}
