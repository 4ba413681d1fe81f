package db

import (
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// RedactedPassword replaces the password wherever a connection target is displayed.
const RedactedPassword = "***"

// Address returns host:port, bracketing IPv6 literals.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN returns the driver-specific connection string.
// It contains the plain password and must never be logged; use RedactedURL instead.
func (c Config) DSN() string {
	if c.Engine == EngineMySQL {
		return c.mysqlDSN()
	}
	return c.postgresDSN()
}

// RedactedURL renders the connection target as a URL with the password masked.
// It is assembled by hand because url.URL would percent-encode the mask.
func (c Config) RedactedURL() string {
	var b strings.Builder
	b.WriteString(c.Engine.String())
	b.WriteString("://")
	if c.User != "" || c.Password != "" {
		b.WriteString(url.User(c.User).String())
		if c.Password != "" {
			b.WriteString(":" + RedactedPassword)
		}
		b.WriteByte('@')
	}
	b.WriteString(c.Address())
	b.WriteString("/" + url.PathEscape(c.Name))
	return b.String()
}

func (c Config) postgresDSN() string {
	q := url.Values{}
	q.Set("connect_timeout", strconv.Itoa(timeoutSeconds(c.ConnectTimeout)))
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     c.Address(),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	switch {
	case c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String()
}

func (c Config) mysqlDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Address()
	mc.DBName = c.Name
	mc.Timeout = c.ConnectTimeout
	return mc.FormatDSN()
}

// timeoutSeconds converts d to whole seconds for libpq-style connect_timeout.
// libpq treats 0 as "wait forever", so anything positive rounds up to at least 1.
func timeoutSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}
