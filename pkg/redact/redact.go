// redact — хелперы для безопасного логирования чувствительных значений.
// Значение ключа доступа никогда не пишется в логи, даже частично.
package redact

// Key маскирует ключ доступа (PAIR_KEY).
func Key() string { return "[REDACTED_KEY]" }

// Creds маскирует учётные данные внешнего провайдера.
func Creds() string { return "[REDACTED_CREDS]" }
