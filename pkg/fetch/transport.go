package fetch

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Doer performs a single HTTP request
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportPolicy defines which transports the fetcher uses.
// Secure is used for every attempt. Insecure, if set, gets one extra try on the final
// attempt after Secure failed. Insecure skips TLS certificate verification and exists only
// for hosts with broken certificates; leave it nil to disable the fallback.
type TransportPolicy struct {
	Secure   Doer
	Insecure Doer
}

// DefaultPolicy makes a policy with the standard transport and, if allowInsecure is set,
// a transport without TLS verification
func DefaultPolicy(allowInsecure bool) TransportPolicy {
	res := TransportPolicy{Secure: &http.Client{Transport: newTransport(nil)}}
	if allowInsecure {
		res.Insecure = &http.Client{
			Transport: newTransport(&tls.Config{InsecureSkipVerify: true}), //nolint:gosec // explicit opt-in fallback for hosts with broken certificates
		}
	}
	return res
}

func newTransport(tlsCfg *tls.Config) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsCfg,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}
