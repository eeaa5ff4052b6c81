package cli

import (
	"regexp"
	"strings"
)

// secretPattern은 값이 노출되면 안 되는 환경 변수 이름에 매칭된다.
var secretPattern = regexp.MustCompile(`(?i)^[A-Z0-9_]*(TOKEN|SECRET|PASSWORD|PASSWD|API_?KEY|CREDENTIALS?)[A-Z0-9_]*$`)

// urlCredentialPattern은 URL에 포함된 user:password@ 부분에 매칭된다.
var urlCredentialPattern = regexp.MustCompile(`://([^/:@\s]+):[^/@\s]+@`)

// MaskSecrets는 NAME=VALUE 형태의 문자열에서 비밀로 보이는 값을 마스킹한다.
// 이름이 비밀 패턴에 매칭되면 값 전체를, 아니면 URL의 비밀번호만 가린다.
func MaskSecrets(s string) string {
	name, value, ok := strings.Cut(s, "=")
	if ok && secretPattern.MatchString(name) {
		if value == "" {
			return s
		}
		return name + "=****"
	}
	return urlCredentialPattern.ReplaceAllString(s, "://$1:****@")
}
