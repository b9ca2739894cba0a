package obs

import "expvar"

// Counters published under /debug/vars.
var (
	CartAdds     = expvar.NewInt("cart_adds")
	OrdersPlaced = expvar.NewInt("orders_placed")
	MailSent     = expvar.NewInt("mail_sent")
	MailFailed   = expvar.NewInt("mail_failed")
	MailDropped  = expvar.NewInt("mail_dropped")
)
