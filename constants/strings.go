package constants

// Column names of the per-node window log, in output order.
var LogColumns = []string{
	"observer",
	"neighbor",
	"window_start",
	"window_end",
	"contacts",
	"contact_time",
	"tx_offer_normal",
	"tx_ok_normal",
	"tx_abort_normal",
	"rx_normal",
	"tx_offer_flood",
	"tx_ok_flood",
	"tx_abort_flood",
	"rx_flood",
	"buf_bytes_avg",
	"buf_bytes_max",
	"drop_buf_normal",
	"drop_buf_flood",
}

// Message class names used in logs and metrics labels.
const (
	Normal  = "normal"
	Flood   = "flood"
	Neither = "neither"
)
