// Package clock provides the time source used by the service.
//
// Business code depends on Clocker instead of calling time.Now directly, so OTP
// windows, challenge expiry and token lifetimes can be driven deterministically
// in tests with Manual.
package clock
