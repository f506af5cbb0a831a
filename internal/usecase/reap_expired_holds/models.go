package reap_expired_holds

// Результаты прохода для метрик
const (
	RunOK      = "ok"
	RunPartial = "partial"
	RunFailed  = "failed"
)

// Result итог одного прохода
type Result struct {
	// Found холдов с истёкшим сроком в выборке
	Found int
	// Expired отменено в этом проходе
	Expired int
	// Skipped уже изменены параллельно (оплата, освобождение, другой reaper)
	Skipped int
	// Failed не удалось отменить, будут повторены в следующем проходе
	Failed int
}
