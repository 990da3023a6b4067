package sageauth

import (
	"strconv"
	"strings"

	"github.com/sageflow/sageauth/token"
)

// resolveIdentity derives a canonical user from a raw login response and
// the decoded token claims. Either input may be nil/empty. The priority
// order is an explicit extractor chain, first match wins, so it stays
// auditable:
//
//	id:       response.user.{id,userId,studentId} > response.{id,userId,studentId}
//	          > claims {userId,user_id,studentId,id} > claims sub (last resort,
//	          sub is conventionally a username and only sometimes numeric)
//	username: response.user.username > response.username > claims sub > claims username
//	role:     response.user.role > response.role > claims roles[0]/authorities[0]
//	          > claims role > defaultRole
//
// Resolution fails (nil result) only when both id and username come up
// empty; a role alone is never enough.
func resolveIdentity(resp RawResponse, claims *token.Claims, defaultRole string) *User {
	id := resolveID(resp, claims)
	username := resolveUsername(resp, claims)
	if id == 0 && username == "" {
		return nil
	}

	role := resolveRole(resp, claims)
	if role == "" {
		role = defaultRole
	}

	user := &User{
		ID:       id,
		Username: username,
		Role:     role,
	}
	if v, ok := nestedUser(resp)["holisticProfileCompleted"].(bool); ok {
		user.HolisticProfileCompleted = &v
	} else if v, ok := resp["holisticProfileCompleted"].(bool); ok {
		user.HolisticProfileCompleted = &v
	}

	return user
}

func resolveID(resp RawResponse, claims *token.Claims) int {
	nested := nestedUser(resp)

	candidates := []func() (any, bool){
		func() (any, bool) { v, ok := nested["id"]; return v, ok },
		func() (any, bool) { v, ok := nested["userId"]; return v, ok },
		func() (any, bool) { v, ok := nested["studentId"]; return v, ok },
		func() (any, bool) { v, ok := resp["id"]; return v, ok },
		func() (any, bool) { v, ok := resp["userId"]; return v, ok },
		func() (any, bool) { v, ok := resp["studentId"]; return v, ok },
		func() (any, bool) { return claims.Value("userId") },
		func() (any, bool) { return claims.Value("user_id") },
		func() (any, bool) { return claims.Value("studentId") },
		func() (any, bool) { return claims.Value("id") },
		func() (any, bool) { return claims.Value("sub") },
	}

	for _, candidate := range candidates {
		v, ok := candidate()
		if !ok {
			continue
		}
		if id, ok := positiveInt(v); ok {
			return id
		}
	}

	return 0
}

func resolveUsername(resp RawResponse, claims *token.Claims) string {
	nested := nestedUser(resp)

	candidates := []func() string{
		func() string { s, _ := nested["username"].(string); return s },
		func() string { s, _ := resp["username"].(string); return s },
		func() string { return claims.Subject() },
		func() string { return claims.String("username") },
	}

	for _, candidate := range candidates {
		if s := strings.TrimSpace(candidate()); s != "" {
			return s
		}
	}

	return ""
}

func resolveRole(resp RawResponse, claims *token.Claims) string {
	nested := nestedUser(resp)

	candidates := []func() string{
		func() string { s, _ := nested["role"].(string); return s },
		func() string { s, _ := resp["role"].(string); return s },
		func() string { return claims.FirstGrantedRole() },
		func() string { return claims.String("role") },
	}

	for _, candidate := range candidates {
		if s := strings.TrimSpace(candidate()); s != "" {
			return s
		}
	}

	return ""
}

func nestedUser(resp RawResponse) map[string]any {
	if resp == nil {
		return nil
	}
	nested, _ := resp["user"].(map[string]any)
	return nested
}

// positiveInt accepts a number greater than zero, or a non-empty string
// that parses to one. JSON decoding hands numbers over as float64, but
// claim values may also arrive as json.Number-style strings.
func positiveInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n > 0 && n == float64(int(n)) {
			return int(n), true
		}
	case int:
		if n > 0 {
			return n, true
		}
	case int64:
		if n > 0 {
			return int(n), true
		}
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(s)
		if err == nil && parsed > 0 {
			return parsed, true
		}
	}
	return 0, false
}
