package connstr

import (
	"fmt"
	"net"
	"strings"
)

// HostNotFoundError возвращается когда имя хоста из data source
// не резолвится ни в один IP адрес.
type HostNotFoundError struct {
	Host string
}

func (e *HostNotFoundError) Error() string {
	return fmt.Sprintf("connstr: host %q not found", e.Host)
}

// ResolveDataSource нормализует data source строки подключения:
// добавляет префикс "tcp:", заменяет имя машины на IP адрес,
// сохраняя именованный инстанс ("\SQL2017") и порт (",1433").
//
// Примеры:
//
//	"localhost,1433"        -> "tcp:127.0.0.1,1433"
//	"tcp:srv\SQL2017,1433"  -> "tcp:10.0.0.5\SQL2017,1433"
//	"."                     -> "tcp:127.0.0.1"
func ResolveDataSource(s string) (string, error) {
	rest := s
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "tcp:") {
		rest = rest[4:]
	}

	var instance, port string

	if i := strings.IndexByte(rest, ','); i >= 0 {
		port = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '\\'); i >= 0 {
		instance = rest[i:]
		rest = rest[:i]
	}

	ip, err := resolveHost(rest)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("tcp:")
	b.WriteString(ip)
	b.WriteString(instance)
	if port != "" {
		b.WriteByte(',')
		b.WriteString(port)
	}

	return b.String(), nil
}

// resolveHost резолвит имя машины в IP. Предпочитаем IPv4,
// IPv6 используется только если IPv4 адресов нет.
func resolveHost(host string) (string, error) {
	if host == "." {
		host = "localhost"
	}

	// Уже IP - резолвить нечего.
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	addrs, err := net.LookupIP(host)
	if err != nil || len(addrs) == 0 {
		return "", &HostNotFoundError{Host: host}
	}

	var ipv6 net.IP
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4.String(), nil
		}
		if ipv6 == nil {
			ipv6 = addr
		}
	}

	if ipv6 != nil {
		return ipv6.String(), nil
	}

	return "", &HostNotFoundError{Host: host}
}
