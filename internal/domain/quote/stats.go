package quote

type Stats struct {
	Total      int     `json:"total"`
	Created    int     `json:"created"`
	Sent       int     `json:"sent"`
	Delivered  int     `json:"delivered"`
	TotalValue float64 `json:"totalValue"`
}

func Summarize(quotes []Quote) Stats {
	var s Stats
	for _, q := range quotes {
		s.Total++
		switch NormalizeStatus(string(q.Status)) {
		case StatusSent:
			s.Sent++
		case StatusDelivered:
			s.Delivered++
		default:
			s.Created++
		}
		s.TotalValue += Finite(q.Amount)
	}
	return s
}
