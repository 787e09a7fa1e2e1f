//go:build windows

package sdkpath

import (
	"golang.org/x/sys/windows/registry"

	"shipwright/internal/services"
)

const sdkRegistryKey = `SOFTWARE\Microsoft\Microsoft SDKs\Windows\v10.0`

type registryResolver struct{}

func newPlatformResolver() Resolver {
	return registryResolver{}
}

func (registryResolver) LocateCRT(arch string) (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, sdkRegistryKey, registry.QUERY_VALUE|registry.WOW64_32KEY)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "sdkpath", "locate_crt", "windows sdk registry key missing", err)
	}
	defer key.Close()

	root, _, err := key.GetStringValue("InstallationFolder")
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "sdkpath", "locate_crt", "windows sdk installation folder missing", err)
	}
	version, _, err := key.GetStringValue("ProductVersion")
	if err != nil {
		version = ""
	}
	// Installed SDKs commonly append a fourth version component to the
	// directory name that the registry value omits.
	if version != "" {
		if dir, err := probeRedist(root, version+".0", arch); err == nil {
			return dir, nil
		}
	}
	return probeRedist(root, version, arch)
}
