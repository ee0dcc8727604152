package config

import "strings"

// RESEP_SECURITY_JWTSECRET -> security.jwtsecret
var envKeyReplacer = strings.NewReplacer(".", "_")
