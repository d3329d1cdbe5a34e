package cmd

import (
	"github.com/spf13/pflag"
)

// flagKeys maps the settings keys to the flags that override them.
var flagKeys = map[string]string{
	"nodes":               "nodes",
	"trace.file":          "trace",
	"trace.lines":         "trace-lines",
	"trace.window":        "window",
	"presence.file":       "presence",
	"routing":             "routing",
	"congestion":          "congestion",
	"scheduling":          "scheduling",
	"deletion":            "deletion",
	"drop_policy":         "drop-policy",
	"buffer.capacity":     "capacity",
	"buffer.jitter":       "capacity-jitter",
	"ttl":                 "ttl",
	"replicas":            "copies",
	"traffic.load":        "load",
	"traffic.type":        "traffic",
	"traffic.file":        "traffic-file",
	"traffic.warmup":      "warmup",
	"traffic.cooldown":    "cooldown",
	"traffic.burst_time":  "burst-time",
	"packet.size":         "packet-size",
	"packet.control_size": "control-size",
	"link.bandwidth":      "bandwidth",
	"seed":                "seed",
	"profile":             "profile",
	"output.db":           "output",
	"log.level":           "log-level",
	"log.format":          "log-format",
	"monitor.port":        "monitor-port",
}

func addSimFlags(fs *pflag.FlagSet) {
	fs.Int("nodes", 0, "number of nodes, IDs are in [0, nodes)")
	fs.String("trace", "", "contact trace file")
	fs.Int("trace-lines", 0, "read the first this many contacts, 0 for all")
	fs.Int("window", 0, "contacts loaded at a time, 0 loads the whole trace")
	fs.String("presence", "", "presence file")
	fs.String("routing", "epidemic",
		"routing protocol: direct, epidemic, sprayandwait, prophet, twohop, firstcontact")
	fs.String("congestion", "none", "congestion control: none, bufferaware, aimd")
	fs.String("scheduling", "fifo", "scheduling policy: fifo, lifo, random, utility")
	fs.String("deletion", "justttl",
		"deletion mechanism: justttl, vaccine, cataclysm, noduplicates")
	fs.String("drop-policy", "droptail",
		"buffer overflow policy: droptail, drophead, dropoldest, droplowestutility")
	fs.Int("capacity", 0, "buffer capacity in messages, 0 for infinite")
	fs.Int("capacity-jitter", 0, "random variation of the buffer capacity")
	fs.Float64("ttl", 0, "message lifetime in seconds, 0 for infinite")
	fs.Int("copies", 1, "copies of each message for replica-limited protocols")
	fs.Int("load", 0, "number of messages to generate")
	fs.String("traffic", "uniform", "traffic model: uniform, burst, sample, predefined")
	fs.String("traffic-file", "", "message list of the predefined traffic model")
	fs.Float64("warmup", 0, "seconds at the start of the trace without traffic")
	fs.Float64("cooldown", 0, "seconds at the end of the trace without traffic")
	fs.Float64("burst-time", 0, "time of the burst traffic")
	fs.Int("packet-size", 1000, "size of a data packet")
	fs.Int("control-size", 10, "size of a control packet unit")
	fs.Float64("bandwidth", 0, "link bandwidth in size units per second, 0 for instant")
	fs.Uint64("seed", 0, "random seed, 0 for the default streams")
	fs.StringToString("profile", nil, "routing protocol parameters")
	fs.String("output", "", "SQLite file the results are written to")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "text", "log format: text or json")
	fs.Int("monitor-port", 0, "port of the HTTP monitor, 0 to disable")
}
