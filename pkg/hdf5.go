package cherentrace

import (
	"github.com/next-exp/hdf5-go"
)

// Row layouts of the output tables. Field order is the on-disk column order.

type runInfoHDF5 struct {
	run_number int32
}

type photonHDF5 struct {
	event_number  int32
	telescope     int32
	x             float32 // m, or deg in telescope frame
	y             float32
	alt           float32 // deg, NaN outside telescope frame
	az            float32
	cx            float32
	cy            float32
	time          float32 // ns
	pixel_id      int32
	wavelength    float32
	xem           float32 // m
	yem           float32
	zem           float32
	emission_time float32 // ns
	energy        float32
	particle_id   int32
	generation    int32
	is_muon       int8
}

type particleHDF5 struct {
	event_number int32
	x            float32 // m
	y            float32
	z            float32
	cx           float32
	cy           float32
	cz           float32
	time         float32 // ns
	momentum     float32
	weight       float32
	particle_id  int32
	obs_level    int32
	fate_index   int32
	generation   int32
	is_muon      int8
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.Compression)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, counter int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, counter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, counter int) {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		panic(err)
	}

	// extend
	rowsInFile := uint(counter)
	newsize := []uint{rowsInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{rowsInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}
