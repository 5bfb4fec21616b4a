// MQTT实测数据源与配时下发
// 订阅"前缀/路口ID"主题缓存最新实测样本，优化结果以JSON发布
package measure

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
)

const (
	defaultClientID     = "atsc-go"
	defaultMeasureTopic = "atsc/measure"
	defaultTimingTopic  = "atsc/timing"

	// 下发等待上限，超时视为下发失败（即发即弃）
	applyTimeout = 2 * time.Second
)

// measurementMsg 实测数据消息格式
// 说明：流量可直接给出，也可给出按车型的计数由PCU换算器折算
type measurementMsg struct {
	Flows         map[string]float64              `json:"flows_pcu_h,omitempty"`    // 各方向流量（PCU/小时）
	VehicleCounts map[string]entity.VehicleCounts `json:"vehicle_counts,omitempty"` // 各方向按车型的车辆计数
	IntervalS     float64                         `json:"interval_s,omitempty"`     // 车辆计数的统计时长（秒）
	Queues        map[string]int                  `json:"queues,omitempty"`         // 各方向排队长度（车辆数）
	TotalWaitingS float64                         `json:"total_waiting_s"`          // 累计等待时间（秒）
	VehicleCount  int                             `json:"vehicle_count"`            // 观测车辆数
}

// timingMsg 配时下发消息格式
type timingMsg struct {
	JunctionID string    `json:"junction_id"`
	GreensS    []float64 `json:"greens_s"`
	Timestamp  int64     `json:"timestamp"`
}

// DecodeMeasurement 解析实测数据消息
// 功能：解析JSON消息为实测数据；方向键未知时告警并跳过该方向
// 说明：未给出流量时，由按车型的计数经PCU换算折算为流量
func DecodeMeasurement(payload []byte, pcu *PCUConverter) (entity.Measurement, error) {
	var msg measurementMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		return entity.Measurement{}, fmt.Errorf("bad measurement payload: %w", err)
	}

	m := entity.Measurement{
		Flows:         make(entity.FlowMap),
		Queues:        make(entity.QueueMap),
		TotalWaitingS: msg.TotalWaitingS,
		VehicleCount:  msg.VehicleCount,
	}
	for label, flow := range msg.Flows {
		dir, err := entity.ParseDirection(label)
		if err != nil {
			log.Warnf("measurement: %v, skipped", err)
			continue
		}
		m.Flows[dir] = flow
	}
	if len(msg.Flows) == 0 && msg.IntervalS > 0 {
		for label, counts := range msg.VehicleCounts {
			dir, err := entity.ParseDirection(label)
			if err != nil {
				log.Warnf("measurement: %v, skipped", err)
				continue
			}
			m.Flows[dir] = pcu.Convert(counts) / msg.IntervalS * 3600
		}
	}
	for label, queue := range msg.Queues {
		dir, err := entity.ParseDirection(label)
		if err != nil {
			log.Warnf("measurement: %v, skipped", err)
			continue
		}
		m.Queues[dir] = queue
	}
	return m, nil
}

// EncodeTiming 编码配时下发消息
func EncodeTiming(junctionID string, greens []float64) ([]byte, error) {
	return json.Marshal(timingMsg{
		JunctionID: junctionID,
		GreensS:    greens,
		Timestamp:  time.Now().Unix(),
	})
}

var (
	_ entity.IMeasurementSource = (*MQTTSource)(nil)
	_ entity.ITimingSink        = (*MQTTSink)(nil)
)

// MQTTSource MQTT实测数据源
// 功能：订阅各路口的实测数据主题，缓存最新样本供控制周期读取
// 说明：样本读取后即消耗，同一样本不会被重复用于两个控制周期
type MQTTSource struct {
	client mqtt.Client
	pcu    *PCUConverter
	prefix string

	mu     sync.Mutex
	latest map[string]entity.Measurement
}

// MQTTSink MQTT配时下发
type MQTTSink struct {
	client mqtt.Client
	prefix string
}

// NewMQTT 创建共享同一连接的MQTT数据源与配时下发
// 参数：c-MQTT连接配置，pcu-PCU换算器
// 返回：数据源、下发接口与错误信息，连接失败返回错误
func NewMQTT(c config.MQTT, pcu *PCUConverter) (*MQTTSource, *MQTTSink, error) {
	clientID := c.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(c.Username)
	opts.SetPassword(c.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnf("mqtt connection lost: %v", err)
	})
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("connect to mqtt broker %s: %w", c.Broker, token.Error())
	}
	log.Infof("connected to mqtt broker %s", c.Broker)

	source := &MQTTSource{
		client: client,
		pcu:    pcu,
		prefix: topicOrDefault(c.MeasureTopic, defaultMeasureTopic),
		latest: make(map[string]entity.Measurement),
	}
	if token := client.Subscribe(source.prefix+"/+", 1, source.onMessage); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, nil, fmt.Errorf("subscribe %s/+: %w", source.prefix, token.Error())
	}

	sink := &MQTTSink{
		client: client,
		prefix: topicOrDefault(c.TimingTopic, defaultTimingTopic),
	}
	return source, sink, nil
}

func topicOrDefault(topic, fallback string) string {
	if topic == "" {
		return fallback
	}
	return strings.TrimSuffix(topic, "/")
}

// onMessage 处理实测数据消息，路口ID取自主题的最后一段
func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()
	junctionID := topic[strings.LastIndex(topic, "/")+1:]
	if junctionID == "" {
		log.Warnf("measurement on topic %s without junction id, dropped", topic)
		return
	}
	m, err := DecodeMeasurement(msg.Payload(), s.pcu)
	if err != nil {
		log.Warnf("junction %s: %v, dropped", junctionID, err)
		return
	}
	s.mu.Lock()
	s.latest[junctionID] = m
	s.mu.Unlock()
}

// Collect 取出路口缓存的最新实测样本
// 返回：样本与是否存在，取出后缓存被清空
func (s *MQTTSource) Collect(junctionID string) (entity.Measurement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.latest[junctionID]
	if ok {
		delete(s.latest, junctionID)
	}
	return m, ok
}

// Close 断开MQTT连接
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
}

// ApplyGreens 将配时发布到"前缀/路口ID"主题
// 说明：即发即弃，等待确认超时按失败处理
func (s *MQTTSink) ApplyGreens(junctionID string, greens []float64) bool {
	payload, err := EncodeTiming(junctionID, greens)
	if err != nil {
		log.Warnf("junction %s: encode timing: %v", junctionID, err)
		return false
	}
	token := s.client.Publish(s.prefix+"/"+junctionID, 1, false, payload)
	if !token.WaitTimeout(applyTimeout) || token.Error() != nil {
		log.Warnf("junction %s: publish timing failed: %v", junctionID, token.Error())
		return false
	}
	return true
}
