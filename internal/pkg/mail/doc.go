// Package mail sends plain-text email over SMTP.
package mail
