package butylene

import (
	"reflect"
	"unsafe"

	"github.com/zoobzio/sentinel"
)

func init() {
	sentinel.Tag(fieldTag)
}

// fieldTag is the single struct tag key the mapper reads for field-level
// annotations: `butylene:"name=host,order=2"`.
const fieldTag = "butylene"

// scanType returns sentinel field metadata for rt, preferring a cached
// sentinel.Lookup (populated only by a [sentinel.Scan] call made outside
// this package; scanType itself never stores into that cache) and falling
// back to hand-rolled reflection otherwise. sentinel's
// own Scan[T] is a compile-time generic and cannot be called for a type
// discovered only at runtime (a struct field's declared type, a
// container's element type), which is the common case once the mapper is
// recursing.
func scanType(rt reflect.Type, widen bool) sentinel.Metadata {
	rt = underlyingType(rt)

	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
	}
	if rt.Kind() != reflect.Struct {
		return spec
	}

	spec.Fields = make([]sentinel.FieldMetadata, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !widen {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup(fieldTag); ok {
			fm.Tags[fieldTag] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return spec
}

// fieldValue reads field fm's value out of struct value rv, using the
// unsafe escape hatch for unexported fields so that [RegisterWidened]
// types can participate in field signatures without an exported-fields-
// only restriction. When rv is addressable, CanSet is false exactly when
// the field is unexported, so that's how unexported-ness is detected
// rather than tracking it separately. When rv is not addressable (a struct
// value read by ObjectData), the field is returned as read, without the
// unsafe escape hatch.
func fieldValue(rv reflect.Value, fm sentinel.FieldMetadata) reflect.Value {
	f := rv.FieldByIndex(fm.Index)
	if !f.CanSet() && f.CanAddr() {
		return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}
	return f
}

// setFieldValue assigns value into field fm of struct value rv, bypassing
// the exported-only restriction the same way fieldValue does for reads.
func setFieldValue(rv reflect.Value, fm sentinel.FieldMetadata, value reflect.Value) {
	target := fieldValue(rv, fm)
	target.Set(value)
}
