package model

import "time"

// Períodos aceitos nas estatísticas
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodTotal = "total"
)

// ParsePeriod devolve o período informado ou fallback quando desconhecido
func ParsePeriod(period, fallback string) string {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodTotal:
		return period
	}
	return fallback
}

// PeriodStart calcula o início da janela: o dia corrente para day, 7 e 30
// dias antes de hoje para week e month, e nil para total
func PeriodStart(period string, now time.Time) *time.Time {
	today := StartOfDay(now)
	var since time.Time
	switch period {
	case PeriodDay:
		since = today
	case PeriodWeek:
		since = today.AddDate(0, 0, -7)
	case PeriodMonth:
		since = today.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &since
}

// StartOfDay trunca para a meia-noite no fuso de t
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
