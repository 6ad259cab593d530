package config

// SystemConfig describes the records seeded on first start
type SystemConfig interface {
	GetSystemAdminEmail() string
	GetSystemAdminPassword() string
	GetDemoChurchName() string
	GetDemoChurchCode() string
}

type System struct{}

var _ SystemConfig = System{}

func (System) GetSystemAdminEmail() string {
	return GetEnv("SYSTEM_ADMIN_EMAIL", "admin@churchai.app")
}

// GetSystemAdminPassword is empty unless set; a random password is generated and logged instead
func (System) GetSystemAdminPassword() string {
	return GetEnv("SYSTEM_ADMIN_PASSWORD", "")
}

// GetDemoChurchName returns the church seeded for local development. Empty disables seeding.
func (System) GetDemoChurchName() string {
	return GetEnv("DEMO_CHURCH_NAME", "Iglesia Central")
}

func (System) GetDemoChurchCode() string {
	return GetEnv("DEMO_CHURCH_CODE", "CENTRAL01")
}
