package state

import (
	"time"
)

// defaultBackground is slide backdrop used when configuration does not name
// one. Proportions match slide canvas.
var defaultBackground = []byte(`<svg viewBox="0 0 1000 750" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="wash" x1="0" y1="0" x2="0" y2="1">
      <stop offset="0" stop-color="#FFFFFF"/>
      <stop offset="1" stop-color="#EEF3FA"/>
    </linearGradient>
  </defs>
  <rect x="0" y="0" width="1000" height="750" fill="url(#wash)"/>
  <rect x="0" y="0" width="1000" height="12" fill="#1F3864"/>
  <rect x="0" y="12" width="1000" height="4" fill="#2E75B6"/>
  <path d="M0 700 C250 670 450 730 1000 690 L1000 750 L0 750 Z" fill="#DCE6F2"/>
  <rect x="0" y="742" width="1000" height="8" fill="#1F3864"/>
</svg>`)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:             time.Now(),
		DefaultBackground: defaultBackground,
	}
}
