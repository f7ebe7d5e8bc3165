// Package middleware holds the gin middlewares shared by every route:
// identity and admin gating, CORS, and panic recovery.
package middleware

import logging "github.com/op/go-logging"

var logger = logging.MustGetLogger("middleware")
