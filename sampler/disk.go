package sampler

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

// sectorSize is the fixed unit /proc/diskstats reports sectors in,
// regardless of the device's physical sector size.
const sectorSize = 512

// virtualDiskPrefixes name devices that are not physical disks.
var virtualDiskPrefixes = []string{"loop", "ram", "zram", "dm-", "sr", "fd", "md"}

// collectDisk reads /proc/diskstats and appends read/write ops-per-second
// for every whole physical disk. Byte rates (sectors x 512) are kept aside
// for legend text rather than plotted.
func (s *Sampler) collectDisk(ts time.Time) error {
	f, err := s.openProcDiskstats()
	if err != nil {
		return fmt.Errorf("sampler: open /proc/diskstats: %w", err)
	}
	defer f.Close()

	byteRates := make(map[string]DiskByteRates)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		device := fields[2]
		if !isWholeDisk(device) {
			continue
		}

		readOps, err1 := strconv.ParseUint(fields[3], 10, 64)
		readSectors, err2 := strconv.ParseUint(fields[5], 10, 64)
		writeOps, err3 := strconv.ParseUint(fields[7], 10, 64)
		writeSectors, err4 := strconv.ParseUint(fields[9], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		s.registry.Ensure(device, metrics.ClassDisk)

		if p, ok := s.rates.Compute(device, metrics.ChannelRead, ts, float64(readOps)); ok {
			if err := s.registry.Append(device, metrics.ChannelRead, p); err != nil {
				s.logger.Error("disk append rejected", "device", device, "error", err)
			}
		}
		if p, ok := s.rates.Compute(device, metrics.ChannelWrite, ts, float64(writeOps)); ok {
			if err := s.registry.Append(device, metrics.ChannelWrite, p); err != nil {
				s.logger.Error("disk append rejected", "device", device, "error", err)
			}
		}

		var br DiskByteRates
		if p, ok := s.rates.Compute(device, chanReadBytes, ts, float64(readSectors*sectorSize)); ok {
			br.ReadBps = p.Value
		}
		if p, ok := s.rates.Compute(device, chanWriteBytes, ts, float64(writeSectors*sectorSize)); ok {
			br.WriteBps = p.Value
		}
		byteRates[device] = br
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sampler: scan /proc/diskstats: %w", err)
	}

	s.mu.Lock()
	for k, v := range byteRates {
		s.diskBytes[k] = v
	}
	s.mu.Unlock()

	return nil
}

// isWholeDisk filters /proc/diskstats device names down to physical whole
// disks: virtual devices and partitions are excluded.
func isWholeDisk(name string) bool {
	for _, prefix := range virtualDiskPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	// nvme0n1p2 / mmcblk0p1 style partitions carry a pN suffix.
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		if i := strings.LastIndex(name, "p"); i > 0 && allDigits(name[i+1:]) && len(name[i+1:]) > 0 {
			return false
		}
		return true
	}

	// sda1 style partitions end in digits.
	return !strings.ContainsAny(name[len(name)-1:], "0123456789")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
