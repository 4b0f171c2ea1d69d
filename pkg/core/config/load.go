package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// runtimeFile mirrors config/sicoss.yaml. Amounts are plain numbers in the
// file and converted to decimals on load.
type runtimeFile struct {
	TopeJubilatorioPatronal    *float64 `yaml:"tope_jubilatorio_patronal"`
	TopeJubilatorioPersonal    *float64 `yaml:"tope_jubilatorio_personal"`
	TopeOtrosAportesPersonales *float64 `yaml:"tope_otros_aportes_personales"`
	TruncaTope                 *bool    `yaml:"trunca_tope"`

	CheckLicencias *bool `yaml:"check_lic"`
	CheckRetro     *bool `yaml:"check_retro"`
	CheckSinActivo *bool `yaml:"check_sin_activo"`

	AsignacionFamiliar      *bool   `yaml:"asignacion_familiar"`
	TrabajadorConvencionado *string `yaml:"trabajador_convencionado"`
	InformarBecarios        *bool   `yaml:"informar_becarios"`
	ARTConTope              *bool   `yaml:"art_con_tope"`
	ConceptosNoRemunEnART   *bool   `yaml:"conceptos_no_remun_en_art"`

	PorcAporteAdicionalJubilacion *float64 `yaml:"porc_aporte_adicional_jubilacion"`
	CategoriasDiferenciales       []int    `yaml:"categorias_diferenciales"`
}

// LoadRuntime reads the yaml defaults file and overlays it on Default().
// A missing file is not an error: the built-in defaults apply.
func LoadRuntime(path string) (SicossConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("no se pudo leer %s: %w", path, err)
	}

	var file runtimeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("no se pudo parsear %s: %w", path, err)
	}

	if file.TopeJubilatorioPatronal != nil {
		cfg.TopeJubilatorioPatronal = decimal.NewFromFloat(*file.TopeJubilatorioPatronal)
	}
	if file.TopeJubilatorioPersonal != nil {
		cfg.TopeJubilatorioPersonal = decimal.NewFromFloat(*file.TopeJubilatorioPersonal)
	}
	if file.TopeOtrosAportesPersonales != nil {
		cfg.TopeOtrosAportesPersonales = decimal.NewFromFloat(*file.TopeOtrosAportesPersonales)
	}
	if file.TruncaTope != nil {
		cfg.TruncaTope = *file.TruncaTope
	}
	if file.CheckLicencias != nil {
		cfg.CheckLicencias = *file.CheckLicencias
	}
	if file.CheckRetro != nil {
		cfg.CheckRetro = *file.CheckRetro
	}
	if file.CheckSinActivo != nil {
		cfg.CheckSinActivo = *file.CheckSinActivo
	}
	if file.AsignacionFamiliar != nil {
		cfg.AsignacionFamiliar = *file.AsignacionFamiliar
	}
	if file.TrabajadorConvencionado != nil {
		cfg.TrabajadorConvencionado = *file.TrabajadorConvencionado
	}
	if file.InformarBecarios != nil {
		cfg.InformarBecarios = *file.InformarBecarios
	}
	if file.ARTConTope != nil {
		cfg.ARTConTope = *file.ARTConTope
	}
	if file.ConceptosNoRemunEnART != nil {
		cfg.ConceptosNoRemunEnART = *file.ConceptosNoRemunEnART
	}
	if file.PorcAporteAdicionalJubilacion != nil {
		cfg.PorcAporteAdicionalJubilacion = decimal.NewFromFloat(*file.PorcAporteAdicionalJubilacion)
	}
	if file.CategoriasDiferenciales != nil {
		cfg.CategoriasDiferenciales = file.CategoriasDiferenciales
	}

	return cfg, cfg.Validate()
}

// DatabaseConfig is the [postgresql] section of database.ini, with
// environment overrides for container deployments.
type DatabaseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// LoadDatabase reads database.ini and applies PG* / DATABASE_URL overrides.
// DATABASE_URL, when set, wins outright (DSN returns it verbatim).
func LoadDatabase(path string) (DatabaseConfig, error) {
	db := DatabaseConfig{Host: "localhost", Port: "5432"}

	if _, err := os.Stat(path); err == nil {
		file, err := ini.Load(path)
		if err != nil {
			return db, fmt.Errorf("no se pudo leer %s: %w", path, err)
		}
		section := file.Section("postgresql")
		db.Host = section.Key("host").MustString(db.Host)
		db.Port = section.Key("port").MustString(db.Port)
		db.Database = section.Key("database").String()
		db.User = section.Key("user").String()
		db.Password = section.Key("password").String()
	}

	for env, dst := range map[string]*string{
		"PGHOST":     &db.Host,
		"PGPORT":     &db.Port,
		"PGDATABASE": &db.Database,
		"PGUSER":     &db.User,
		"PGPASSWORD": &db.Password,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	return db, nil
}

// DSN builds the pgx connection string.
func (d DatabaseConfig) DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Database)
}
