package local

import (
	"sync"

	"github.com/mindprince/gonvml"

	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider"
)

// nvmlSampler reads utilization from the first NVML device. Initialization
// happens lazily on the first sample; machines without the NVML library
// simply report no metrics.
type nvmlSampler struct {
	once      sync.Once
	available bool
}

func newNvmlSampler() *nvmlSampler {
	return &nvmlSampler{}
}

func (n *nvmlSampler) sample() *provider.InstanceMetrics {
	n.once.Do(func() {
		if err := gonvml.Initialize(); err != nil {
			log.Warnw("nvml unavailable, local GPU metrics disabled", "err", err)
			return
		}
		count, err := gonvml.DeviceCount()
		if err != nil || count == 0 {
			log.Warnw("no nvml devices found, local GPU metrics disabled", "err", err)
			gonvml.Shutdown()
			return
		}
		n.available = true
	})
	if !n.available {
		return nil
	}

	dev, err := gonvml.DeviceHandleByIndex(0)
	if err != nil {
		log.Debugw("nvml device handle failed", "err", err)
		return nil
	}

	res := &provider.InstanceMetrics{}
	if gpuUtil, memUtil, err := dev.UtilizationRates(); err == nil {
		res.GpuUtilization = float64(gpuUtil)
		res.MemoryUsed = float64(memUtil)
	}
	if temp, err := dev.Temperature(); err == nil {
		res.Temperature = float64(temp)
	}
	if powerMw, err := dev.PowerUsage(); err == nil {
		res.PowerDraw = float64(powerMw) / 1000
	}
	return res
}
