package anomaly

import "errors"

// Sentinel kinds for anomaly analysis errors.
var (
	ErrStore = errors.New("record store query failed")
)
