package fakes

import (
	"github.com/diskmason/diskmason/inventory"
	"github.com/diskmason/diskmason/provision"
)

type FakePartitioner struct {
	WipeDeviceCalled   bool
	WipeDeviceDevPaths []string
	WipeDeviceTables   []inventory.PartitionTable
	WipeDeviceErr      error

	ProbeTableTables map[string]inventory.PartitionTable
	ProbeTableErr    error

	CreatePartitionCalled   bool
	CreatePartitionDevPaths []string
	CreatePartitionSpecs    []provision.PartitionSpec
	CreatePartitionErr      error

	RemovePartitionCalled   bool
	RemovePartitionDevPaths []string
	RemovePartitionNumbers  []uint
	RemovePartitionErr      error
}

func NewFakePartitioner() *FakePartitioner {
	return &FakePartitioner{
		ProbeTableTables: make(map[string]inventory.PartitionTable),
	}
}

func (p *FakePartitioner) WipeDevice(devPath string, table inventory.PartitionTable) error {
	p.WipeDeviceCalled = true
	p.WipeDeviceDevPaths = append(p.WipeDeviceDevPaths, devPath)
	p.WipeDeviceTables = append(p.WipeDeviceTables, table)
	return p.WipeDeviceErr
}

func (p *FakePartitioner) ProbeTable(devPath string) (inventory.PartitionTable, error) {
	if p.ProbeTableErr != nil {
		return inventory.PartitionTableUnknown, p.ProbeTableErr
	}
	table, found := p.ProbeTableTables[devPath]
	if !found {
		return inventory.PartitionTableUnknown, nil
	}
	return table, nil
}

func (p *FakePartitioner) CreatePartition(devPath string, spec provision.PartitionSpec) error {
	p.CreatePartitionCalled = true
	p.CreatePartitionDevPaths = append(p.CreatePartitionDevPaths, devPath)
	p.CreatePartitionSpecs = append(p.CreatePartitionSpecs, spec)
	return p.CreatePartitionErr
}

func (p *FakePartitioner) RemovePartition(devPath string, number uint) error {
	p.RemovePartitionCalled = true
	p.RemovePartitionDevPaths = append(p.RemovePartitionDevPaths, devPath)
	p.RemovePartitionNumbers = append(p.RemovePartitionNumbers, number)
	return p.RemovePartitionErr
}
