package config

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/sim"
)

// EnvPrefix is prepended to every environment override, e.g. QUADSIM_SIM_TICKRATE.
const EnvPrefix = "QUADSIM"

var ErrInvalidConfig = errors.New("config: invalid value")

type Point struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

func (p Point) Vec3() mgl64.Vec3 { return mgl64.Vec3{p.X, p.Y, p.Z} }

type Origin struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SimConfig struct {
	TickRate         float64       `mapstructure:"tickRate"`
	MaxFrame         time.Duration `mapstructure:"maxFrame"`
	MaxStepsPerFrame int           `mapstructure:"maxStepsPerFrame"`
}

type SessionConfig struct {
	VehicleName    string `mapstructure:"vehicleName"`
	StartPosition  Point  `mapstructure:"startPosition"`
	ShowTrajectory bool   `mapstructure:"showTrajectory"`
	Origin         Origin `mapstructure:"origin"`
}

// Config is the full simulator configuration. Airframe and collision keys map
// onto the sim parameter structs by field name.
type Config struct {
	Log       LogConfig           `mapstructure:"log"`
	Sim       SimConfig           `mapstructure:"sim"`
	Session   SessionConfig       `mapstructure:"session"`
	Airframe  sim.Airframe        `mapstructure:"airframe"`
	Collision sim.CollisionPolicy `mapstructure:"collision"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("sim.tickRate", 120.0)
	v.SetDefault("sim.maxFrame", 250*time.Millisecond)
	v.SetDefault("sim.maxStepsPerFrame", 5)

	v.SetDefault("session.vehicleName", sim.DefaultVehicleName)
	v.SetDefault("session.startPosition.x", 0.0)
	v.SetDefault("session.startPosition.y", sim.GroundClearance)
	v.SetDefault("session.startPosition.z", 0.0)
	v.SetDefault("session.showTrajectory", false)
	v.SetDefault("session.origin.lat", 55.7558)
	v.SetDefault("session.origin.lon", 37.6173)

	a := sim.DefaultAirframe()
	v.SetDefault("airframe.mass", a.Mass)
	v.SetDefault("airframe.maxThrust", a.MaxThrust)
	v.SetDefault("airframe.motorEfficiency", a.MotorEfficiency)
	v.SetDefault("airframe.armLength", a.ArmLength)
	v.SetDefault("airframe.kPitch", a.KPitch)
	v.SetDefault("airframe.kRoll", a.KRoll)
	v.SetDefault("airframe.kYaw", a.KYaw)
	v.SetDefault("airframe.yawMomentScale", a.YawMomentScale)
	v.SetDefault("airframe.maxTiltAngle", a.MaxTiltAngle)
	v.SetDefault("airframe.maxPitchRate", a.MaxPitchRate)
	v.SetDefault("airframe.maxRollRate", a.MaxRollRate)
	v.SetDefault("airframe.maxYawRate", a.MaxYawRate)
	v.SetDefault("airframe.levelGain", a.LevelGain)
	v.SetDefault("airframe.tiltBlend", a.TiltBlend)
	v.SetDefault("airframe.yawBlend", a.YawBlend)
	v.SetDefault("airframe.angularDamping", a.AngularDamping)
	v.SetDefault("airframe.verticalDamping", a.VerticalDamping)
	v.SetDefault("airframe.horizontalDamping", a.HorizontalDamping)
	v.SetDefault("airframe.horizontalThrustFactor", a.HorizontalThrustFactor)
	v.SetDefault("airframe.maxHorizontalSpeed", a.MaxHorizontalSpeed)
	v.SetDefault("airframe.dragCoefficient", a.DragCoefficient)

	c := sim.DefaultCollisionPolicy()
	v.SetDefault("collision.gracePeriod", c.GracePeriod)
	v.SetDefault("collision.minAltitude", c.MinAltitude)
	v.SetDefault("collision.slowSpeedKmh", c.SlowSpeedKmh)
	v.SetDefault("collision.slowAltitude", c.SlowAltitude)
	v.SetDefault("collision.interval", c.Interval)
	v.SetDefault("collision.broadPhaseRadius", c.BroadPhaseRadius)
	v.SetDefault("collision.vehicleRadius", c.VehicleRadius)
	v.SetDefault("collision.vehicleHalfHeight", c.VehicleHalfHeight)
}

// Load reads defaults, the optional config file at path and QUADSIM_* environment
// overrides. The file format follows its extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file and no environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

func (c *Config) Validate() error {
	switch {
	case c.Sim.TickRate <= 0:
		return errors.Wrapf(ErrInvalidConfig, "sim.tickRate must be positive, got %v", c.Sim.TickRate)
	case c.Sim.MaxFrame <= 0:
		return errors.Wrapf(ErrInvalidConfig, "sim.maxFrame must be positive, got %v", c.Sim.MaxFrame)
	case c.Sim.MaxStepsPerFrame <= 0:
		return errors.Wrapf(ErrInvalidConfig, "sim.maxStepsPerFrame must be positive, got %d", c.Sim.MaxStepsPerFrame)
	case c.Airframe.Mass <= 0:
		return errors.Wrapf(ErrInvalidConfig, "airframe.mass must be positive, got %v", c.Airframe.Mass)
	case c.Airframe.MaxThrust <= 0:
		return errors.Wrapf(ErrInvalidConfig, "airframe.maxThrust must be positive, got %v", c.Airframe.MaxThrust)
	case c.Airframe.MotorEfficiency <= 0 || c.Airframe.MotorEfficiency > 1:
		return errors.Wrapf(ErrInvalidConfig, "airframe.motorEfficiency must be in (0,1], got %v", c.Airframe.MotorEfficiency)
	case c.Airframe.ArmLength <= 0:
		return errors.Wrapf(ErrInvalidConfig, "airframe.armLength must be positive, got %v", c.Airframe.ArmLength)
	case c.Collision.Interval <= 0:
		return errors.Wrapf(ErrInvalidConfig, "collision.interval must be positive, got %v", c.Collision.Interval)
	case c.Session.StartPosition.Y < sim.GroundClearance:
		return errors.Wrapf(ErrInvalidConfig, "session.startPosition.y must be at least %v", sim.GroundClearance)
	}
	return nil
}

func (c *Config) LogLevel() log.Level { return log.ParseLevel(c.Log.Level) }

// SessionOptions builds sim options. The registry and logger come from the caller.
func (c *Config) SessionOptions(registry *sim.Registry, logger log.Log) sim.Options {
	return sim.Options{
		Airframe:       c.Airframe,
		Policy:         c.Collision,
		Registry:       registry,
		VehicleName:    c.Session.VehicleName,
		StartPosition:  c.Session.StartPosition.Vec3(),
		ShowTrajectory: c.Session.ShowTrajectory,
		TickRate:       c.Sim.TickRate,
		MaxFrame:       c.Sim.MaxFrame,
		MaxSteps:       c.Sim.MaxStepsPerFrame,
		Geodetic:       sim.NewGeodetic(c.Session.Origin.Lat, c.Session.Origin.Lon),
		Logger:         logger,
	}
}
