// Package traffic sums transferred volume per IP, split into a download and
// an upload output by a static activity router.
package traffic

import (
	"sort"
	"strconv"
	"strings"

	"github.com/emptyOVO/freqset-go/worker"
)

const JobName = "traffic"

type Activity int

const (
	Download Activity = iota
	Upload
)

func (a Activity) String() string {
	if a == Download {
		return "download"
	}
	return "upload"
}

// activityShards is the static routing table; every reducer index is fixed.
var activityShards = map[Activity]int{
	Download: 0,
	Upload:   1,
}

// NShards is the number of reducers the routing table addresses.
const NShards = 2

// ParseActivity matches "download" case-insensitively; anything else is an upload.
func ParseActivity(s string) Activity {
	if strings.EqualFold(s, "download") {
		return Download
	}
	return Upload
}

// ActivityPartition routes by activity type through the static table.
func ActivityPartition(key string, nReduce int) int {
	return activityShards[ParseActivity(key)] % nReduce
}

func NewJob() worker.Job {
	return worker.Job{
		Name:      JobName,
		Map:       Map,
		Reduce:    Reduce,
		Partition: ActivityPartition,
		NReduce:   NShards,
	}
}

// Map expects whitespace separated lines:
//
//	ip timestamp volume activity
//
// It emits: key=activity, value="ip,volume". Lines with another field count
// or a non-integer volume are skipped.
func Map(filename string, contents string, ctx worker.MrContext) {
	for _, line := range strings.Split(contents, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			continue
		}
		if _, err := strconv.ParseInt(fields[2], 10, 64); err != nil {
			continue
		}
		ctx.EmitIntermediate(fields[3], fields[0]+","+fields[2])
	}
}

// Reduce sums volume per ip for one activity and emits ip -> total, ips in
// ascending order.
func Reduce(key string, values []string, ctx worker.MrContext) {
	totals := map[string]int64{}
	for _, v := range values {
		i := strings.LastIndex(v, ",")
		if i < 0 {
			continue
		}
		n, err := strconv.ParseInt(v[i+1:], 10, 64)
		if err != nil {
			continue
		}
		totals[v[:i]] += n
	}
	ips := make([]string, 0, len(totals))
	for ip := range totals {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	for _, ip := range ips {
		ctx.Emit(ip, strconv.FormatInt(totals[ip], 10))
	}
}
