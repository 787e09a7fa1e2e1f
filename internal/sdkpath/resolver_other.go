//go:build !windows

package sdkpath

import "os"

// envResolver reads the SDK location from the environment. Non-Windows
// hosts have no registry, and cross-builds still need a place to find
// the redistributables.
type envResolver struct{}

func newPlatformResolver() Resolver {
	return envResolver{}
}

func (envResolver) LocateCRT(arch string) (string, error) {
	root := os.Getenv("SHIPWRIGHT_SDK_ROOT")
	if root == "" {
		return "", &NotFoundError{Resource: "SHIPWRIGHT_SDK_ROOT"}
	}
	return probeRedist(root, os.Getenv("SHIPWRIGHT_SDK_VERSION"), arch)
}
