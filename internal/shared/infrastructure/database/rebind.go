package database

import "strings"

// Rebind converts '?' placeholders to the driver-specific format.
// Repositories write queries with '?' and rebind against the active
// driver, so a single repository implementation serves both backends.
// For Postgres it rewrites to $1, $2, ...; for SQLite it returns the
// query unchanged.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(itoa(n))
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
