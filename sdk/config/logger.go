package config

type Logger struct {
	Path        string `mapstructure:"path"`        // 日志文件路径
	Level       string `mapstructure:"level"`       // 日志级别
	Stdout      bool   `mapstructure:"stdout"`      // 是否输出到标准控制台（true：输出，false：不输出）
	FileOutput  bool   `mapstructure:"fileOutput"`  // 是否输出到日志文件
	MaxSize     int    `mapstructure:"maxSize"`     // 每个日志文件最大多少MB，一般设置50MB
	ErrorMaxAge int    `mapstructure:"errorMaxAge"` // error日志文件保留天数，一般设置14天
	InfoMaxAge  int    `mapstructure:"infoMaxAge"`  // info日志文件保留天数，一般设置3天
	MaxBackups  int    `mapstructure:"maxBackups"`  // 日志文件保留个数，一般设置20个
}

var LoggerConfig = new(Logger)
