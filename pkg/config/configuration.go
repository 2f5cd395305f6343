// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/refmap/pkg/common/moerr"
	"github.com/matrixorigin/refmap/pkg/logutil"
)

// Parameters of the library consumers
type Parameters struct {
	//default is 'info'. the level of log.
	LogLevel string `toml:"logLevel"`

	//default is 'console'. the format of log.
	LogFormat string `toml:"logFormat"`

	//default is ''. the file
	LogFilename string `toml:"logFilename"`

	//default is 512MB. the maximum of log file size
	LogMaxSize int64 `toml:"logMaxSize"`

	//default is 0. the maximum days of log file to be kept
	LogMaxDays int64 `toml:"logMaxDays"`

	//default is 0. the maximum numbers of log file to be retained
	LogMaxBackups int64 `toml:"logMaxBackups"`

	//default is 11. the bucket count of newly created registries
	DefaultBucketCount int64 `toml:"defaultBucketCount"`
}

func (p *Parameters) SetDefaultValues() {
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.LogFormat == "" {
		p.LogFormat = "console"
	}
	if p.LogMaxSize == 0 {
		p.LogMaxSize = 512
	}
	if p.DefaultBucketCount <= 0 {
		p.DefaultBucketCount = 11
	}
}

// LogConfig builds the logutil configuration from the parameters.
func (p *Parameters) LogConfig() *logutil.LogConfig {
	return &logutil.LogConfig{
		Level:      p.LogLevel,
		Format:     p.LogFormat,
		Filename:   p.LogFilename,
		MaxSize:    int(p.LogMaxSize),
		MaxDays:    int(p.LogMaxDays),
		MaxBackups: int(p.LogMaxBackups),
	}
}

// LoadParametersFromFile reads p from the toml file at configFile and
// fills in default values. The file must exist.
func LoadParametersFromFile(configFile string) (*Parameters, error) {
	p := &Parameters{}
	if _, err := toml.DecodeFile(configFile, p); err != nil {
		return nil, moerr.NewBadConfig("%s: %v", configFile, err)
	}
	p.SetDefaultValues()
	return p, nil
}
