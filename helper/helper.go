package helper

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ToBytes convert any data to bytes
func ToBytes(i interface{}) (b []byte) {
	switch t := i.(type) {
	case []byte:
		b = t
	case string:
		b = []byte(t)
	default:
		b, _ = json.Marshal(i)
	}
	return
}

// StringInSlice check if the given string is in the slice
func StringInSlice(str string, list []string) bool {
	for _, v := range list {
		if v == str {
			return true
		}
	}
	return false
}

// MaskingPasswordURL replace the password part of a connection URL for log output
func MaskingPasswordURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return rawURL
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	res, _ := url.QueryUnescape(u.String())
	return res
}

// SubdomainFromHost extract the first label of a multi label host name,
// returns empty string for bare domains, IPs and the www label
func SubdomainFromHost(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	if labels[0] == "www" {
		return ""
	}
	return labels[0]
}
