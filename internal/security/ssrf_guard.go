// Package security 는 애플리케이션의 보안 기능을 제공한다.
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

// SSRFGuardService 는 SSRF 방지 기능의 인터페이스를 정의한다.
// 썸네일 프록시가 외부 이미지 URL 을 가져올 때 사용한다.
type SSRFGuardService interface {
	// NewSafeClient 는 SSRF 방지 기능이 달린 HTTP 클라이언트를 생성한다.
	// safeurl 라이브러리에 의해 사설 IP, 루프백, 링크로컬,
	// 메타데이터 IP 로의 요청이 자동으로 차단된다.
	// DNS 리바인딩 공격 대책도 활성화된다.
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL 은 URL 의 안전성을 사전에 검증한다.
	// 스킴, 호스트, IP 주소를 검사해 위험한 URL 이면 에러를 반환한다.
	ValidateURL(rawURL string) error
}

// allowedSchemes 는 허용되는 URL 스킴.
var allowedSchemes = []string{"http", "https"}

// blockedNetworks 는 차단 대상 네트워크 범위.
// 패키지 초기화 시 1회만 파싱해 ValidateURL 의 검증에 사용한다.
// safeurl 은 net.Dialer 레벨에서 DNS 해석 후의 IP 주소도 검증하므로
// DNS 리바인딩 공격에도 대응한다.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// 사설 IP (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// 루프백 (RFC 1122)
		"127.0.0.0/8",
		// 링크로컬 (RFC 3927) - 클라우드 메타데이터 IP (169.254.169.254) 포함
		"169.254.0.0/16",
		// 현재 네트워크
		"0.0.0.0/8",
		// IPv6 루프백
		"::1/128",
		// IPv6 링크로컬
		"fe80::/10",
		// IPv6 유니크로컬
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// ssrfGuard 는 SSRFGuardService 의 구현.
type ssrfGuard struct{}

// NewSSRFGuard 는 SSRFGuardService 의 새 인스턴스를 생성한다.
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient 는 SSRF 방지 기능이 달린 HTTP 클라이언트를 생성한다.
// safeurl 의 기본 설정으로 다음이 차단된다:
//   - 사설 IP (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - 루프백 (127.0.0.0/8, ::1)
//   - 링크로컬 (169.254.0.0/16, fe80::/10)
//   - 메타데이터 IP (169.254.169.254)
//
// safeurl 은 net.Dialer 의 Control 훅으로 DNS 해석 후의 IP 를 검증하므로
// DNS 리바인딩 공격에도 대응한다.
func (g *ssrfGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateURL 은 URL 의 안전성을 사전에 검증한다.
// DNS 해석을 동반하지 않는 정적 검사를 수행한다.
// 썸네일 프록시가 HTTP 요청을 보내기 전의 사전 체크로 사용한다.
// 주의: 이 검증은 DNS 해석 전의 정적 체크이므로, DNS 리바인딩 공격은
// NewSafeClient 가 생성하는 HTTP 클라이언트의 Dialer 검증으로 방지된다.
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// 스킴 검사: http/https 만 허용
	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	// 호스트 검사: 빈 호스트 거부
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// IP 주소인 경우: 차단 대상 CIDR 과 대조
	ip := net.ParseIP(host)
	if ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	// 호스트명인 경우: localhost 등의 위험한 호스트명 거부
	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isAllowedScheme 은 URL 스킴이 허용 목록에 포함되는지 검사한다.
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP 는 IP 주소가 차단 대상 네트워크 범위에 포함되는지 검사한다.
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames 는 차단 대상 호스트명.
var blockedHostnames = []string{
	"localhost",
}

// isBlockedHostname 은 호스트명이 차단 대상인지 검사한다.
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
