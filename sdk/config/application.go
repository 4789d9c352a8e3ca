package config

type Application struct {
	Mode string `mapstructure:"mode"` // dev，test，prod
	Name string `mapstructure:"name"` // 应用名称
}

var ApplicationConfig = new(Application)
