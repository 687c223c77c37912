package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrames(t *testing.T) {
	t.Run("internal frames", func(t *testing.T) {
		stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/x/otpauth/internal/identity/usecase.(*Usecase).Login(...)
	/src/otpauth/internal/identity/usecase/login.go:42 +0x1a
main.main()
	/src/otpauth/main.go:10 +0x1
`)

		require.Equal(t, []string{"internal/identity/usecase/login.go:42"}, Frames(stack))
	})

	t.Run("no internal frames", func(t *testing.T) {
		stack := []byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")

		require.Equal(t, []string{string(stack)}, Frames(stack))
	})
}
