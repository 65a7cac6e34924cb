// Package connstr разбирает ADO-style строки подключения к MS SQL Server
// и приводит их к виду, который понимает драйвер go-mssqldb.
//
// Поддерживаемые ключи (регистр не важен, есть синонимы):
//
//	server / data source / address    - адрес сервера, например "tcp:localhost\SQL2017,1433"
//	database / initial catalog        - имя базы данных
//	user id / uid / user              - логин
//	password / pwd                    - пароль
//	integratedsecurity                - true/sspi для Windows-аутентификации
//	trustservercertificate            - по умолчанию true
//	encrypt                           - включить TLS
package connstr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataSourceNotSpecified возвращается когда в строке подключения
// не указан server / data source.
var ErrDataSourceNotSpecified = errors.New("connstr: data source / server not specified in connection string")

// ConnString - разобранная строка подключения.
type ConnString struct {
	Server                 string
	Database               string
	User                   string
	Password               string
	IntegratedSecurity     bool
	TrustServerCertificate bool
	Encrypt                bool
}

// Parse разбирает ADO-style строку подключения "key=value;key=value".
// Неизвестные ключи игнорируются. TrustServerCertificate по умолчанию true.
func Parse(s string) (*ConnString, error) {
	cs := &ConnString{
		TrustServerCertificate: true,
	}

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("connstr: malformed pair %q (expected key=value)", part)
		}

		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "server", "data source", "address", "addr":
			cs.Server = value
		case "database", "initial catalog":
			cs.Database = value
		case "user id", "uid", "user":
			cs.User = value
		case "password", "pwd":
			cs.Password = value
		case "integratedsecurity", "integrated security":
			cs.IntegratedSecurity = isTrue(value) || strings.EqualFold(value, "sspi")
		case "trustservercertificate", "trust server certificate":
			cs.TrustServerCertificate = isTrue(value)
		case "encrypt":
			cs.Encrypt = isTrue(value)
		default:
			// Неизвестные ключи не считаем ошибкой - драйверы
			// исторически терпимы к лишним параметрам.
		}
	}

	return cs, nil
}

// DSN приводит строку подключения к канонической форме для драйвера:
// data source резолвится в IP (см. ResolveDataSource), ключи
// записываются в фиксированном порядке.
func (cs *ConnString) DSN() (string, error) {
	if strings.TrimSpace(cs.Server) == "" {
		return "", ErrDataSourceNotSpecified
	}

	server, err := ResolveDataSource(cs.Server)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	appendKeyValue(&b, "server", server)

	if cs.Database != "" {
		appendKeyValue(&b, "database", cs.Database)
	}
	if cs.User != "" {
		appendKeyValue(&b, "user id", cs.User)
	}
	if cs.Password != "" {
		appendKeyValue(&b, "password", cs.Password)
	}
	if cs.IntegratedSecurity {
		appendKeyValue(&b, "integratedsecurity", "sspi")
	}
	if cs.TrustServerCertificate {
		appendKeyValue(&b, "trustservercertificate", "true")
	}
	if cs.Encrypt {
		appendKeyValue(&b, "encrypt", "true")
	}

	return b.String(), nil
}

// Adjust - разбор и нормализация за один вызов.
func Adjust(s string) (string, error) {
	cs, err := Parse(s)
	if err != nil {
		return "", err
	}
	return cs.DSN()
}

func appendKeyValue(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(';')
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
