package input

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("module", "input")

const mongoTimeout = 30 * time.Second

// ApproachDoc 单个进口道的几何数据
type ApproachDoc struct {
	Lanes           int     `yaml:"lanes" bson:"lanes"`                         // 车道数
	WidthM          float64 `yaml:"width_m" bson:"width_m"`                     // 车道宽度（米）
	TurnRadiusM     float64 `yaml:"turn_radius_m" bson:"turn_radius_m"`         // 转弯半径（米）
	StorageLengthM  float64 `yaml:"storage_length_m" bson:"storage_length_m"`   // 存储长度（米）
	HeavyVehiclePct float64 `yaml:"heavy_vehicle_pct" bson:"heavy_vehicle_pct"` // 重型车比例（0-1）
}

// FixedPhaseDoc 基线固定配时中的单个相位
type FixedPhaseDoc struct {
	Name   string  `yaml:"name" bson:"name"`
	GreenS float64 `yaml:"green_s" bson:"green_s"`
}

// FixedTimingDoc 路口当前运行的基线固定配时
type FixedTimingDoc struct {
	CycleLengthS int             `yaml:"cycle_length_s" bson:"cycle_length_s"`
	Phases       []FixedPhaseDoc `yaml:"phases,omitempty" bson:"phases,omitempty"`
}

// JunctionDoc 单个路口的几何数据文档
type JunctionDoc struct {
	ID         string                 `yaml:"id" bson:"id"`
	Name       string                 `yaml:"name" bson:"name"`
	Lat        float64                `yaml:"lat,omitempty" bson:"lat,omitempty"`
	Lon        float64                `yaml:"lon,omitempty" bson:"lon,omitempty"`
	Approaches map[string]ApproachDoc `yaml:"approaches" bson:"approaches"`
	Timing     FixedTimingDoc         `yaml:"current_timing,omitempty" bson:"current_timing,omitempty"`
}

// GeometryData 几何输入数据
type GeometryData struct {
	Junctions []JunctionDoc `yaml:"junctions"`
}

// Init 加载几何数据
// 功能：根据配置从文件或MongoDB加载路口几何数据
// 参数：c-配置对象
// 返回：几何数据指针与错误信息
// 算法说明：
// 1. 文件路径优先：从YAML文件严格解析
// 2. 否则从MongoDB集合加载全部文档
// 3. 校验数据完整性：至少一个路口，每个路口必须有ID与进口道
// 说明：几何数据是必需输入，任何失败都应中止初始化
func Init(c config.Config) (*GeometryData, error) {
	var data *GeometryData
	var err error
	if c.Input.Geometry.File != "" {
		data, err = loadFromFile(c.Input.Geometry.File)
	} else if c.Input.URI != "" {
		data, err = loadFromMongo(c.Input.URI, c.Input.Geometry)
	} else {
		return nil, fmt.Errorf("input: no geometry source specified (file or uri required)")
	}
	if err != nil {
		return nil, err
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	log.Infof("loaded %d junctions", len(data.Junctions))
	return data, nil
}

func loadFromFile(path string) (*GeometryData, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input: failed to read geometry file %s: %w", path, err)
	}
	var data GeometryData
	if err := yaml.UnmarshalStrict(file, &data); err != nil {
		return nil, fmt.Errorf("input: failed to parse geometry file %s: %w", path, err)
	}
	return &data, nil
}

func loadFromMongo(uri string, path config.InputPath) (*GeometryData, error) {
	if path.DB == "" || path.Col == "" {
		return nil, fmt.Errorf("input: geometry db/col must be specified when loading from mongodb")
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("input: failed to connect to mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())

	cur, err := client.Database(path.DB).Collection(path.Col).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("input: failed to query %s.%s: %w", path.DB, path.Col, err)
	}
	var docs []JunctionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("input: failed to decode %s.%s: %w", path.DB, path.Col, err)
	}
	return &GeometryData{Junctions: docs}, nil
}

func validate(data *GeometryData) error {
	if len(data.Junctions) == 0 {
		return fmt.Errorf("input: geometry data contains no junctions")
	}
	for i, j := range data.Junctions {
		if j.ID == "" {
			return fmt.Errorf("input: junction #%d has empty id", i)
		}
		if len(j.Approaches) == 0 {
			return fmt.Errorf("input: junction %s has no approaches", j.ID)
		}
	}
	return nil
}
