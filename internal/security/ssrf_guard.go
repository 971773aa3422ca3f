// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// MaxURLLength は保存を許可するURLの最大長。
const MaxURLLength = 2048

// blockedNetworks は外部URLとして受け付けないネットワーク範囲。
// パッケージ初期化時に1回だけパースする。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",     // プライベート (RFC 1918)
		"172.16.0.0/12",  // プライベート (RFC 1918)
		"192.168.0.0/16", // プライベート (RFC 1918)
		"127.0.0.0/8",    // ループバック
		"169.254.0.0/16", // リンクローカル（クラウドメタデータIPを含む）
		"0.0.0.0/8",      // カレントネットワーク
		"100.64.0.0/10",  // キャリアグレードNAT
		"::1/128",        // IPv6ループバック
		"fe80::/10",      // IPv6リンクローカル
		"fc00::/7",       // IPv6ユニークローカル
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// URLGuard は外部URLの安全性を検証し、SSRF防止付きのHTTPクライアントを提供する。
// IdPとの通信と、IdPから受け取ったアバターURLの検証に使用する。
type URLGuard struct {
	schemes []string
}

// NewURLGuard はURLGuardを生成する。schemesを省略した場合はhttpsのみ許可する。
func NewURLGuard(schemes ...string) *URLGuard {
	if len(schemes) == 0 {
		schemes = []string{"https"}
	}
	return &URLGuard{schemes: schemes}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlはDialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディングもブロックされる。
func (g *URLGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(g.schemes...).
		SetAllowedPorts(443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はURLの安全性をDNS解決なしで静的に検証する。
// スキーム、長さ、ホスト名、IPアドレスを検証し、危険なURLの場合はエラーを返す。
func (g *URLGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL too long: %d bytes", len(rawURL))
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !g.allowsScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %q (allowed: %v)", scheme, g.schemes)
	}
	if parsed.User != nil {
		return fmt.Errorf("credentials in URL are not allowed")
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

func (g *URLGuard) allowsScheme(scheme string) bool {
	for _, allowed := range g.schemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP はIPアドレスがブロック対象のネットワーク範囲に含まれるかを検証する。
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// isBlockedHostname はlocalhostおよび内部向けのホスト名を拒否する。
func isBlockedHostname(host string) bool {
	lower := strings.TrimSuffix(strings.ToLower(host), ".")
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return true
	}
	return strings.HasSuffix(lower, ".internal") || strings.HasSuffix(lower, ".local")
}
